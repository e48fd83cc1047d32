package ws

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/lexiduel/vocab-services/internal/comm"
	"github.com/lexiduel/vocab-services/internal/game/models"
)

// UserDirectory is the slice of the user store presence needs.
type UserDirectory interface {
	FindByToken(ctx context.Context, token string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetOnline(ctx context.Context, id int64, online bool) error
}

// Presence reflects socket authentication and disconnection as durable
// online/offline status and announces every change to all connections.
// This is a global presence feed, not a per-room one.
type Presence struct {
	registry *Registry
	users    UserDirectory
}

func NewPresence(registry *Registry, users UserDirectory) *Presence {
	return &Presence{registry: registry, users: users}
}

// Authenticate resolves the bearer token and binds the connection on
// success. Invalid tokens fail silently, the connection stays unbound.
func (p *Presence) Authenticate(ctx context.Context, socketId, token string) {
	user, err := p.users.FindByToken(ctx, token)
	if err != nil {
		log.Errorf("token lookup failed for socket %s: %v", socketId, err)
		return
	}
	if user == nil {
		return
	}

	p.registry.Bind(socketId, user.ID)

	if err := p.users.SetOnline(ctx, user.ID, true); err != nil {
		log.Errorf("failed to mark user %d online: %v", user.ID, err)
	}
	user.IsOnline = true

	log.Infof("User %d is online.", user.ID)
	p.BroadcastStatus(user)
}

// SetOffline marks a previously bound user offline and announces it.
func (p *Presence) SetOffline(ctx context.Context, userID int64) {
	if err := p.users.SetOnline(ctx, userID, false); err != nil {
		log.Errorf("failed to mark user %d offline: %v", userID, err)
	}
	log.Infof("User %d is offline.", userID)

	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		log.Errorf("failed to load user %d for status update: %v", userID, err)
	}
	if user != nil {
		user.IsOnline = false
	}
	p.BroadcastStatus(user)
}

// BroadcastStatus pushes a status-update to every live connection.
func (p *Presence) BroadcastStatus(user *models.User) {
	p.registry.Broadcast(comm.StatusUpdate{Type: comm.TypeStatusUpdate, User: user})
}
