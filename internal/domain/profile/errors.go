package profile

import "travelapp/internal/domain"

var (
	ErrNotFound    = domain.NewError(domain.KindNotFound, "PROFILE_NOT_FOUND", "profile not found")
	ErrInvalidRole = domain.NewError(domain.KindValidation, "INVALID_ROLE", "role must be guest, host or admin")
	ErrForbidden   = domain.NewError(domain.KindPermission, "FORBIDDEN", "only admins can change roles")
)
