package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/roach88/accolade/internal/ir"
)

type initRequest struct {
	Admin string `json:"admin" validate:"omitempty,max=256"`
}

type verifierRequest struct {
	Verifier string `json:"verifier" validate:"required,max=256"`
}

type createRequest struct {
	Owner       string `json:"owner" validate:"omitempty,max=256"`
	Title       string `json:"title" validate:"max=4096"`
	Description string `json:"description" validate:"max=4096"`
	Category    string `json:"category" validate:"max=4096"`
	EvidenceURI string `json:"evidence_uri" validate:"max=4096"`
}

type updateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=4096"`
	Description *string `json:"description" validate:"omitempty,max=4096"`
	Category    *string `json:"category" validate:"omitempty,max=4096"`
	EvidenceURI *string `json:"evidence_uri" validate:"omitempty,max=4096"`
}

type verifyRequest struct {
	Verifier string `json:"verifier" validate:"omitempty,max=256"`
}

// CreatedResponse is returned by POST /achievements.
type CreatedResponse struct {
	ID uint64 `json:"id"`
}

// ListResponse wraps a list of achievements.
type ListResponse struct {
	Achievements []ir.Achievement `json:"achievements"`
}

// VerifierResponse reports verifier membership.
type VerifierResponse struct {
	Identity   ir.Identity `json:"identity"`
	IsVerifier bool        `json:"is_verifier"`
}

// bind parses an optional JSON body into dst and validates it.
func (s *Server) bind(c *fiber.Ctx, dst any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
	}
	return s.validate.Struct(dst)
}

func paramID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id must be an unsigned integer")
	}
	return id, nil
}

// init sets the admin. An empty admin defaults to the caller.
func (s *Server) init(c *fiber.Ctx) error {
	var req initRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	admin := ir.Identity(req.Admin)
	if admin == "" {
		admin = caller(c)
	}
	if err := s.reg.Init(c.UserContext(), admin); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"admin": admin})
}

func (s *Server) addVerifier(c *fiber.Ctx) error {
	var req verifierRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	identity := ir.Identity(req.Verifier)
	if err := s.reg.AddVerifier(c.UserContext(), identity); err != nil {
		return err
	}
	return c.JSON(VerifierResponse{Identity: identity, IsVerifier: true})
}

func (s *Server) removeVerifier(c *fiber.Ctx) error {
	identity := ir.Identity(c.Params("identity"))
	if err := s.reg.RemoveVerifier(c.UserContext(), identity); err != nil {
		return err
	}
	return c.JSON(VerifierResponse{Identity: identity, IsVerifier: false})
}

func (s *Server) isVerifier(c *fiber.Ctx) error {
	identity := ir.Identity(c.Params("identity"))
	ok, err := s.reg.IsVerifier(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(VerifierResponse{Identity: identity, IsVerifier: ok})
}

// createAchievement stores a draft. An empty owner defaults to the caller.
func (s *Server) createAchievement(c *fiber.Ctx) error {
	var req createRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	owner := ir.Identity(req.Owner)
	if owner == "" {
		owner = caller(c)
	}
	id, err := s.reg.CreateAchievement(c.UserContext(), ir.AchievementInput{
		Owner:       owner,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		EvidenceURI: req.EvidenceURI,
	})
	if err != nil {
		return err
	}
	c.Location("/api/v1/achievements/" + strconv.FormatUint(id, 10))
	return c.Status(fiber.StatusCreated).JSON(CreatedResponse{ID: id})
}

func (s *Server) updateAchievement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	a, err := s.reg.UpdateAchievement(c.UserContext(), id, ir.AchievementUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		EvidenceURI: req.EvidenceURI,
	})
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (s *Server) mintAchievement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	a, err := s.reg.MintAchievement(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// verifyAchievement verifies as the named verifier, defaulting to the caller.
func (s *Server) verifyAchievement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req verifyRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	verifier := ir.Identity(req.Verifier)
	if verifier == "" {
		verifier = caller(c)
	}
	a, err := s.reg.VerifyAchievement(c.UserContext(), id, verifier)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (s *Server) getAchievement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	a, err := s.reg.GetAchievement(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (s *Server) listByOwner(c *fiber.Ctx) error {
	list, err := s.reg.ListByOwner(c.UserContext(), ir.Identity(c.Params("owner")))
	if err != nil {
		return err
	}
	return c.JSON(ListResponse{Achievements: list})
}

func (s *Server) listByCategory(c *fiber.Ctx) error {
	list, err := s.reg.ListByCategory(c.UserContext(), c.Params("category"))
	if err != nil {
		return err
	}
	return c.JSON(ListResponse{Achievements: list})
}
