package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/accolade/internal/ir"
	"github.com/roach88/accolade/internal/store"
)

// allocateAndCreate increments the ID counter and persists a new draft
// record with its owner and category index entries.
//
// A missing counter reads as zero so the first ID is always 1.
func allocateAndCreate(ctx context.Context, tx store.Tx, in ir.AchievementInput, now uint64) (uint64, error) {
	next, err := readNextID(ctx, tx)
	if err != nil {
		return 0, err
	}
	id := next + 1
	if id == 0 {
		return 0, NewStoreCorruptionError("id counter overflow", next)
	}
	if err := putJSON(ctx, tx, ir.KeyNextID(), id); err != nil {
		return 0, err
	}

	a := ir.Achievement{
		ID:          id,
		Owner:       in.Owner,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		EvidenceURI: in.EvidenceURI,
		Timestamp:   now,
		Status:      ir.StatusDraft,
	}
	if err := putRecord(ctx, tx, a); err != nil {
		return 0, err
	}
	if err := appendIndex(ctx, tx, ir.KeyOwnerIndex(a.Owner), id); err != nil {
		return 0, err
	}
	if err := appendIndex(ctx, tx, ir.KeyCategoryIndex(a.Category), id); err != nil {
		return 0, err
	}
	return id, nil
}

// update overwrites the supplied fields of a loaded draft record.
// Indices are not touched: the category index keeps the creation-time category.
func update(ctx context.Context, tx store.Tx, a ir.Achievement, upd ir.AchievementUpdate) (ir.Achievement, error) {
	if a.Status != ir.StatusDraft {
		return ir.Achievement{}, NewInvalidStateError(a.ID, a.Status, "update")
	}
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	if upd.Category != nil {
		a.Category = *upd.Category
	}
	if upd.EvidenceURI != nil {
		a.EvidenceURI = *upd.EvidenceURI
	}
	if err := putRecord(ctx, tx, a); err != nil {
		return ir.Achievement{}, err
	}
	return a, nil
}

// transitionToMinted moves a loaded record from draft to minted.
func transitionToMinted(ctx context.Context, tx store.Tx, a ir.Achievement) (ir.Achievement, error) {
	return transition(ctx, tx, a, ir.StatusDraft, "mint")
}

// transitionToVerified moves a loaded record from minted to verified.
func transitionToVerified(ctx context.Context, tx store.Tx, a ir.Achievement) (ir.Achievement, error) {
	return transition(ctx, tx, a, ir.StatusMinted, "verify")
}

func transition(ctx context.Context, tx store.Tx, a ir.Achievement, from ir.Status, action string) (ir.Achievement, error) {
	next, ok := a.Status.Next()
	if !ok || a.Status != from {
		return ir.Achievement{}, NewInvalidStateError(a.ID, a.Status, action)
	}
	a.Status = next
	if err := putRecord(ctx, tx, a); err != nil {
		return ir.Achievement{}, err
	}
	return a, nil
}

// get loads a record by ID.
func get(ctx context.Context, tx store.Tx, id uint64) (ir.Achievement, error) {
	a, ok, err := loadRecord(ctx, tx, id)
	if err != nil {
		return ir.Achievement{}, err
	}
	if !ok {
		return ir.Achievement{}, NewNotFoundError(id)
	}
	return a, nil
}

func listByOwner(ctx context.Context, tx store.Tx, owner ir.Identity) ([]ir.Achievement, error) {
	return resolveIndex(ctx, tx, ir.KeyOwnerIndex(owner))
}

func listByCategory(ctx context.Context, tx store.Tx, category string) ([]ir.Achievement, error) {
	return resolveIndex(ctx, tx, ir.KeyCategoryIndex(category))
}

// resolveIndex fetches every record an index references, in index order.
// An absent index yields an empty slice; a dangling entry is corruption.
func resolveIndex(ctx context.Context, tx store.Tx, key ir.Key) ([]ir.Achievement, error) {
	ids, err := readIndex(ctx, tx, key)
	if err != nil {
		return nil, err
	}
	out := make([]ir.Achievement, 0, len(ids))
	for _, id := range ids {
		a, ok, err := loadRecord(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, NewStoreCorruptionError(fmt.Sprintf("index %s references missing record", key), id)
		}
		out = append(out, a)
	}
	return out, nil
}

func loadRecord(ctx context.Context, tx store.Tx, id uint64) (ir.Achievement, bool, error) {
	var a ir.Achievement
	ok, err := getJSON(ctx, tx, ir.KeyAchievement(id), &a)
	if err != nil || !ok {
		return ir.Achievement{}, ok, err
	}
	if a.ID != id {
		return ir.Achievement{}, false, NewStoreCorruptionError(fmt.Sprintf("record stored under id %d claims id %d", id, a.ID), id)
	}
	return a, true, nil
}

func putRecord(ctx context.Context, tx store.Tx, a ir.Achievement) error {
	return putJSON(ctx, tx, ir.KeyAchievement(a.ID), a.Canonical())
}

func readNextID(ctx context.Context, tx store.Tx) (uint64, error) {
	var next uint64
	if _, err := getJSON(ctx, tx, ir.KeyNextID(), &next); err != nil {
		return 0, err
	}
	return next, nil
}

func readIndex(ctx context.Context, tx store.Tx, key ir.Key) ([]uint64, error) {
	var ids []uint64
	if _, err := getJSON(ctx, tx, key, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// appendIndex pushes id onto the end of an index sequence.
func appendIndex(ctx context.Context, tx store.Tx, key ir.Key, id uint64) error {
	ids, err := readIndex(ctx, tx, key)
	if err != nil {
		return err
	}
	return putJSON(ctx, tx, key, append(ids, id))
}

// getJSON decodes the value at key into dst. Returns false if key is absent.
func getJSON(ctx context.Context, tx store.Tx, key ir.Key, dst any) (bool, error) {
	value, ok, err := tx.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return false, NewStoreCorruptionError(fmt.Sprintf("decode %s: %v", key, err), 0)
	}
	return true, nil
}

// putJSON stores v under key as byte-exact canonical JSON.
func putJSON(ctx context.Context, tx store.Tx, key ir.Key, v any) error {
	value, err := ir.MarshalExact(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := tx.Set(ctx, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
