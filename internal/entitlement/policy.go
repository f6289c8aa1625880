// Package entitlement derives what the current user may do from their session.
//
// Every function is pure and total: a nil session is granted nothing, a session without a tenant
// is treated as being on the free plan and roles this client does not know are granted nothing.
// The decisions only drive the client; the notes API enforces the same rules on its own.
package entitlement

import (
	"github.com/skybi/tenote/internal/session"
	"github.com/skybi/tenote/internal/tenant"
)

// FreeNoteLimit is the number of notes a member of a free tenant may hold
const FreeNoteLimit = 3

// IsPro reports whether the session's tenant is on an active pro plan
func IsPro(sess *session.Session) bool {
	return sess != nil && sess.EffectiveSubscription().IsPro()
}

// CanManageNotes reports whether the session may list, edit and delete notes
func CanManageNotes(sess *session.Session) bool {
	return sess != nil && sess.Role.Known()
}

// CanWriteNote reports whether the session may create another note given the current note count.
// Admins are never quota-limited.
func CanWriteNote(sess *session.Session, count int) bool {
	if !CanManageNotes(sess) {
		return false
	}
	return !quotaReached(sess, count)
}

// CanInvite reports whether the session may invite users into its tenant
func CanInvite(sess *session.Session) bool {
	return sess != nil && sess.Role == tenant.RoleAdmin
}

// CanUpgrade reports whether the session may upgrade its tenant's subscription
func CanUpgrade(sess *session.Session) bool {
	return sess != nil && sess.Role == tenant.RoleAdmin
}

// ShouldShowUpgradeBanner reports whether the user should be told about the pro plan
func ShouldShowUpgradeBanner(sess *session.Session, count int) bool {
	return sess != nil && quotaReached(sess, count)
}

// Evaluate collects every decision for the session into a single Set
func Evaluate(sess *session.Session, count int) Set {
	set := EmptySet
	if CanWriteNote(sess, count) {
		set = set.With(WriteNote)
	}
	if CanManageNotes(sess) {
		set = set.With(ManageNotes)
	}
	if CanInvite(sess) {
		set = set.With(Invite)
	}
	if CanUpgrade(sess) {
		set = set.With(Upgrade)
	}
	if ShouldShowUpgradeBanner(sess, count) {
		set = set.With(UpgradeBanner)
	}
	if IsPro(sess) {
		set = set.With(Pro)
	}
	return set
}

func quotaReached(sess *session.Session, count int) bool {
	return sess.Role == tenant.RoleMember && !sess.EffectiveSubscription().IsPro() && count >= FreeNoteLimit
}
