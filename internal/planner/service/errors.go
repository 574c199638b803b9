package service

import (
	"errors"

	"archplan/internal/planner/repository"
	"archplan/internal/planner/rules"
	"archplan/internal/planner/validate"
)

// ============================================================
// Errors
// ============================================================

var (
	ErrNotFound             = repository.ErrNotFound
	ErrInvalidInput         = validate.ErrInvalid
	ErrUnknownRulePack      = rules.ErrUnknownPack
	ErrGenerationInProgress = errors.New("generation already in progress")
)
