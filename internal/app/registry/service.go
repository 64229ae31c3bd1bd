// internal/app/registry/service.go

// Package registry is the authoritative side of AssoHub: associations and
// membership rows live in MongoDB and every mutation goes through the
// business rules here. After a successful registry write the reconciliation
// engine pushes the derived external state (groups, folders, ACLs); those
// pushes are best-effort and never roll a registry mutation back.
package registry

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/gateway/directory"
	"github.com/CorneTubage/assohub/internal/app/reconcile"
	associationstore "github.com/CorneTubage/assohub/internal/app/store/associations"
	membershipstore "github.com/CorneTubage/assohub/internal/app/store/memberships"
	"github.com/CorneTubage/assohub/internal/app/system/events"
	"github.com/CorneTubage/assohub/internal/app/system/namecheck"
	"github.com/CorneTubage/assohub/internal/domain/models"
)

// MaxPresidents is the cap on simultaneous presidents per association.
const MaxPresidents = 2

// Actor identifies who is performing an operation.
type Actor struct {
	ID    string
	Admin bool
}

// PermissionFlags tells the UI what the actor may do with one association.
type PermissionFlags struct {
	CanManage bool `json:"can_manage"`
	CanDelete bool `json:"can_delete"`
}

type Service struct {
	assos   *associationstore.Store
	members *membershipstore.Store
	dir     directory.Gateway
	engine  *reconcile.Engine
	events  *events.Producer
	log     *zap.Logger
}

func New(assos *associationstore.Store, members *membershipstore.Store, dir directory.Gateway, engine *reconcile.Engine, producer *events.Producer, logger *zap.Logger) *Service {
	return &Service{
		assos:   assos,
		members: members,
		dir:     dir,
		engine:  engine,
		events:  producer,
		log:     logger,
	}
}

/* -------------------------------------------------------------------------- */
/* Associations                                                               */
/* -------------------------------------------------------------------------- */

// CreateAssociation registers a new association and provisions its external
// structure. Only platform admins create associations. When code is empty it
// is derived from the name; either way it is immutable afterwards.
func (s *Service) CreateAssociation(ctx context.Context, actor Actor, name, code string) (models.Association, error) {
	if !actor.Admin {
		return models.Association{}, ErrForbidden
	}

	name = namecheck.Clean(name)
	if err := namecheck.Validate(name); err != nil {
		return models.Association{}, invalid("name", err.Error())
	}
	if code == "" {
		code = namecheck.Slugify(name)
	} else {
		code = namecheck.Slugify(code)
	}
	if code == "" {
		return models.Association{}, invalid("code", "code must not be empty")
	}

	asso, err := s.assos.Create(ctx, models.Association{Name: name, Code: code})
	if err != nil {
		if err == associationstore.ErrDuplicateCode {
			return models.Association{}, invalid("code", "an association with this code already exists")
		}
		return models.Association{}, err
	}

	if _, err := s.engine.EnsureAssociationStructure(ctx, code); err != nil {
		s.log.Warn("structure provisioning deferred",
			zap.String("association", code),
			zap.Error(err))
	}

	s.events.Publish(ctx, events.TypeAssociationCreated, code, actor.ID, "", name)
	return asso, nil
}

// RenameAssociation changes the display name. The code, and everything
// derived from it externally, stays put.
func (s *Service) RenameAssociation(ctx context.Context, actor Actor, id primitive.ObjectID, name string) (models.Association, error) {
	asso, err := s.getForActor(ctx, actor, id)
	if err != nil {
		return models.Association{}, err
	}
	if flags := s.flagsFor(ctx, actor, asso.Code); !flags.CanManage {
		return models.Association{}, ErrForbidden
	}

	name = namecheck.Clean(name)
	if err := namecheck.Validate(name); err != nil {
		return models.Association{}, invalid("name", err.Error())
	}

	if err := s.assos.Rename(ctx, id, name); err != nil {
		if err == associationstore.ErrNotFound {
			return models.Association{}, ErrNotFound
		}
		return models.Association{}, err
	}

	s.events.Publish(ctx, events.TypeAssociationRenamed, asso.Code, actor.ID, "", name)
	return s.assos.GetByID(ctx, id)
}

// DeleteAssociation removes the association, its membership rows, and its
// external structure, then re-derives global groups for everyone who was a
// member.
func (s *Service) DeleteAssociation(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if !actor.Admin {
		return ErrForbidden
	}

	asso, err := s.assos.GetByID(ctx, id)
	if err != nil {
		if err == associationstore.ErrNotFound {
			return ErrNotFound
		}
		return err
	}

	roster, err := s.members.ByAssociation(ctx, asso.Code)
	if err != nil {
		return err
	}

	if _, err := s.members.RemoveByAssociation(ctx, asso.Code); err != nil {
		return err
	}
	if _, err := s.assos.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.engine.DeleteStructure(ctx, asso.Code); err != nil {
		s.log.Warn("structure teardown deferred",
			zap.String("association", asso.Code),
			zap.Error(err))
	}

	// Roles held here no longer count toward global groups.
	for _, m := range roster {
		if err := s.engine.SyncGlobalGroups(ctx, m.UserID); err != nil {
			s.log.Warn("global group sync deferred",
				zap.String("user", m.UserID),
				zap.Error(err))
		}
	}

	s.events.Publish(ctx, events.TypeAssociationDeleted, asso.Code, actor.ID, "", asso.Name)
	return nil
}

// ListAssociations returns what the actor may see: everything for admins,
// their own associations for everyone else.
func (s *Service) ListAssociations(ctx context.Context, actor Actor) ([]models.Association, error) {
	if actor.Admin {
		return s.assos.All(ctx)
	}
	ms, err := s.members.UserMemberships(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(ms))
	for _, m := range ms {
		codes = append(codes, m.AssociationCode)
	}
	return s.assos.ByCodes(ctx, codes)
}

// AssociationNames lists every association's display name. Unlike
// ListAssociations this is not scoped: names are not sensitive and the
// directory UI needs them for search-as-you-type.
func (s *Service) AssociationNames(ctx context.Context) ([]string, error) {
	return s.assos.Names(ctx)
}

// GetAssociation loads one association the actor may see.
func (s *Service) GetAssociation(ctx context.Context, actor Actor, id primitive.ObjectID) (models.Association, error) {
	return s.getForActor(ctx, actor, id)
}

// Stats returns the live folder usage snapshot for an association the actor
// may see.
func (s *Service) Stats(ctx context.Context, actor Actor, id primitive.ObjectID) (reconcile.FolderStats, error) {
	asso, err := s.getForActor(ctx, actor, id)
	if err != nil {
		return reconcile.FolderStats{}, err
	}
	return s.engine.FolderStats(ctx, asso.Code), nil
}

// Permissions reports what the actor may do with the association.
func (s *Service) Permissions(ctx context.Context, actor Actor, id primitive.ObjectID) (PermissionFlags, error) {
	asso, err := s.getForActor(ctx, actor, id)
	if err != nil {
		return PermissionFlags{}, err
	}
	return s.flagsFor(ctx, actor, asso.Code), nil
}

// UserPermissions reports the caller's platform-wide capabilities: admins
// manage and delete everything, presidents manage their own roster. Used by
// the front end to decide which controls to render.
func (s *Service) UserPermissions(ctx context.Context, actor Actor) PermissionFlags {
	if actor.Admin {
		return PermissionFlags{CanManage: true, CanDelete: true}
	}
	president, err := s.members.HoldsRoleElsewhere(ctx, actor.ID, models.RolePresident, "")
	if err != nil {
		s.log.Warn("user permissions lookup failed",
			zap.String("user", actor.ID), zap.Error(err))
		return PermissionFlags{}
	}
	return PermissionFlags{CanManage: president}
}

/* -------------------------------------------------------------------------- */
/* Members                                                                    */
/* -------------------------------------------------------------------------- */

// UpsertMember sets a user's role in the association, enforcing the role
// invariants, then reconciles external state.
func (s *Service) UpsertMember(ctx context.Context, actor Actor, code, userID string, role models.Role) (models.Membership, error) {
	asso, err := s.assos.GetByCode(ctx, code)
	if err != nil {
		if err == associationstore.ErrNotFound {
			return models.Membership{}, ErrNotFound
		}
		return models.Membership{}, err
	}
	if flags := s.flagsFor(ctx, actor, code); !flags.CanManage {
		return models.Membership{}, ErrForbidden
	}

	// The invite role grants platform-wide read access, so granting it is
	// an operator decision, not an association one.
	if role == models.RoleInvite && !actor.Admin {
		return models.Membership{}, ErrForbidden
	}

	user, err := s.dir.LookupUser(ctx, userID)
	if err != nil {
		return models.Membership{}, err
	}
	if user == nil {
		return models.Membership{}, invalid("user_id", "no such user in the directory")
	}

	existing, err := s.members.Get(ctx, userID, code)
	switch {
	case err == nil:
	case err == membershipstore.ErrNotFound:
		existing = models.Membership{}
	default:
		return models.Membership{}, err
	}

	// Protected roles cannot be given up by their holder: someone else has
	// to take over first, so an association never locks itself out.
	if actor.ID == userID && existing.Role.IsProtected() && role != existing.Role {
		return models.Membership{}, ErrForbidden
	}

	if role == models.RolePresident && existing.Role != models.RolePresident {
		n, err := s.members.CountRole(ctx, code, models.RolePresident)
		if err != nil {
			return models.Membership{}, err
		}
		if n >= MaxPresidents {
			return models.Membership{}, invalid("role", "this association already has the maximum number of presidents")
		}
		elsewhere, err := s.members.HoldsRoleElsewhere(ctx, userID, models.RolePresident, code)
		if err != nil {
			return models.Membership{}, err
		}
		if elsewhere {
			return models.Membership{}, invalid("role", "this user already presides over another association")
		}
	}

	m, err := s.members.Upsert(ctx, userID, code, role)
	if err != nil {
		return models.Membership{}, err
	}

	s.reconcileMember(ctx, asso.Code, userID, role)

	s.events.Publish(ctx, events.TypeMemberUpserted, code, userID, role, asso.Name)
	return m, nil
}

// RemoveMember drops a user's membership and re-derives their external
// state.
func (s *Service) RemoveMember(ctx context.Context, actor Actor, code, userID string) error {
	asso, err := s.assos.GetByCode(ctx, code)
	if err != nil {
		if err == associationstore.ErrNotFound {
			return ErrNotFound
		}
		return err
	}
	if flags := s.flagsFor(ctx, actor, code); !flags.CanManage {
		return ErrForbidden
	}

	existing, err := s.members.Get(ctx, userID, code)
	if err != nil {
		if err == membershipstore.ErrNotFound {
			return ErrNotFound
		}
		return err
	}
	if actor.ID == userID && existing.Role.IsProtected() {
		return ErrForbidden
	}

	n, err := s.members.Remove(ctx, userID, code)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := s.dir.RemoveUserFromGroup(ctx, userID, code); err != nil {
		s.log.Warn("group removal deferred",
			zap.String("association", code),
			zap.String("user", userID),
			zap.Error(err))
	}
	if err := s.engine.SyncGlobalGroups(ctx, userID); err != nil {
		s.log.Warn("global group sync deferred",
			zap.String("user", userID),
			zap.Error(err))
	}

	s.events.Publish(ctx, events.TypeMemberRemoved, code, userID, existing.Role, asso.Name)
	return nil
}

// Roster returns the association's member list for actors who may see it.
func (s *Service) Roster(ctx context.Context, actor Actor, code string) ([]models.Membership, error) {
	if _, err := s.assos.GetByCode(ctx, code); err != nil {
		if err == associationstore.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.Admin {
		if _, err := s.members.Get(ctx, actor.ID, code); err != nil {
			if err == membershipstore.ErrNotFound {
				return nil, ErrForbidden
			}
			return nil, err
		}
	}
	return s.members.ByAssociation(ctx, code)
}

// UserMemberships returns everything the given user is, across all
// associations. Actors see their own; admins see anyone's.
func (s *Service) UserMemberships(ctx context.Context, actor Actor, userID string) ([]models.Membership, error) {
	if !actor.Admin && actor.ID != userID {
		return nil, ErrForbidden
	}
	return s.members.UserMemberships(ctx, userID)
}

/* -------------------------------------------------------------------------- */
/* Internals                                                                  */
/* -------------------------------------------------------------------------- */

// reconcileMember pushes one membership's derived state. Best-effort: every
// failure is logged and the next mutation converges.
func (s *Service) reconcileMember(ctx context.Context, code, userID string, role models.Role) {
	folderID, err := s.engine.EnsureAssociationStructure(ctx, code)
	if err != nil {
		s.log.Warn("structure provisioning deferred",
			zap.String("association", code),
			zap.Error(err))
	} else if folderID != reconcile.FolderUnknown {
		if err := s.engine.ApplyRolePermissions(ctx, folderID, userID, role); err != nil {
			s.log.Warn("role permissions deferred",
				zap.String("association", code),
				zap.String("user", userID),
				zap.Error(err))
		}
	}
	if err := s.engine.SyncGlobalGroups(ctx, userID); err != nil {
		s.log.Warn("global group sync deferred",
			zap.String("user", userID),
			zap.Error(err))
	}
}

// getForActor loads an association and enforces visibility: admins see
// everything, everyone else only associations they belong to.
func (s *Service) getForActor(ctx context.Context, actor Actor, id primitive.ObjectID) (models.Association, error) {
	asso, err := s.assos.GetByID(ctx, id)
	if err != nil {
		if err == associationstore.ErrNotFound {
			return models.Association{}, ErrNotFound
		}
		return models.Association{}, err
	}
	if actor.Admin {
		return asso, nil
	}
	if _, err := s.members.Get(ctx, actor.ID, asso.Code); err != nil {
		if err == membershipstore.ErrNotFound {
			return models.Association{}, ErrForbidden
		}
		return models.Association{}, err
	}
	return asso, nil
}

// flagsFor computes the actor's rights on one association. Presidents manage
// their roster; only admins delete.
func (s *Service) flagsFor(ctx context.Context, actor Actor, code string) PermissionFlags {
	if actor.Admin {
		return PermissionFlags{CanManage: true, CanDelete: true}
	}
	m, err := s.members.Get(ctx, actor.ID, code)
	if err != nil {
		if err != membershipstore.ErrNotFound {
			s.log.Warn("membership lookup failed",
				zap.String("association", code),
				zap.String("user", actor.ID),
				zap.Error(err))
		}
		return PermissionFlags{}
	}
	return PermissionFlags{CanManage: m.Role == models.RolePresident}
}

// Startup ensures the platform-wide role groups exist. Called once from the
// bootstrap after the gateways are up.
func (s *Service) Startup(ctx context.Context) error {
	if err := s.engine.EnsureGlobalGroups(ctx); err != nil {
		return fmt.Errorf("ensure global groups: %w", err)
	}
	return nil
}
