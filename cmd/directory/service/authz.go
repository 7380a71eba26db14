package service

import (
	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/common/apperr"
)

// Authorization is purely role-based; every mutating entry point calls
// one of these before touching state. The UI disabling controls is a
// convenience, not the boundary.

// requireAdmin rejects any non-admin actor
func requireAdmin(actor models.Actor) error {
	if !actor.Role.IsAdmin() {
		return apperr.Forbidden("role %s may not perform admin operations", actor.Role)
	}
	return nil
}

// requireFieldAuthority rejects actors that may not propose changes to
// the given field. Admins edit the catalog directly and do not use the
// ledger; only the representative of the owning network drafts changes.
func requireFieldAuthority(actor models.Actor, field models.FieldPath) error {
	if actor.Role.IsAdmin() {
		return apperr.Forbidden("admin edits the catalog directly instead of filing change requests")
	}
	network, ok := actor.Role.Network()
	if !ok || network != field.Network {
		return apperr.Forbidden("role %s may not edit %s", actor.Role, field)
	}
	return nil
}

// requireRequester rejects anyone but the original requester
func requireRequester(actor models.Actor, req *models.ChangeRequest) error {
	if actor.Name == "" || actor.Name != req.RequestedBy {
		return apperr.Forbidden("only the original requester may do this")
	}
	return nil
}
