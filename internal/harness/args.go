package harness

import (
	"fmt"

	"github.com/roach88/accolade/internal/ir"
)

// args reads typed values out of a step's YAML argument map.
type args map[string]any

func (a args) str(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("missing arg %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("arg %q: expected string, got %T", key, v)
	}
	return s, nil
}

// optStr returns nil when key is absent.
func (a args) optStr(key string) (*string, error) {
	if _, ok := a[key]; !ok {
		return nil, nil
	}
	s, err := a.str(key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (a args) identity(key string) (ir.Identity, error) {
	s, err := a.str(key)
	return ir.Identity(s), err
}

func (a args) id() (uint64, error) {
	v, ok := a["id"]
	if !ok {
		return 0, fmt.Errorf("missing arg %q", "id")
	}
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, fmt.Errorf("arg %q: must be non-negative, got %d", "id", n)
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	default:
		return 0, fmt.Errorf("arg %q: expected integer, got %T", "id", v)
	}
}

// input reads create arguments. Only owner is required.
func (a args) input() (ir.AchievementInput, error) {
	owner, err := a.identity("owner")
	if err != nil {
		return ir.AchievementInput{}, err
	}
	in := ir.AchievementInput{Owner: owner}
	for key, dst := range map[string]*string{
		"title":        &in.Title,
		"description":  &in.Description,
		"category":     &in.Category,
		"evidence_uri": &in.EvidenceURI,
	} {
		s, err := a.optStr(key)
		if err != nil {
			return ir.AchievementInput{}, err
		}
		if s != nil {
			*dst = *s
		}
	}
	return in, nil
}

func (a args) update() (ir.AchievementUpdate, error) {
	var upd ir.AchievementUpdate
	var err error
	if upd.Title, err = a.optStr("title"); err != nil {
		return upd, err
	}
	if upd.Description, err = a.optStr("description"); err != nil {
		return upd, err
	}
	if upd.Category, err = a.optStr("category"); err != nil {
		return upd, err
	}
	if upd.EvidenceURI, err = a.optStr("evidence_uri"); err != nil {
		return upd, err
	}
	return upd, nil
}
