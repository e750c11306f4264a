package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/models"
	"github.com/armankhan8150/taskscape-front/internal/realtime"
)

// errRowMissing is returned by write helpers when the target row does not
// exist. The gateway adapter maps it to a NotFoundError.
var errRowMissing = errors.New("row missing")

const sessionUserKey = "session_user_id"

// LocalGateway serves the gateway interface from the local sqlite database.
// Every successful write is echoed onto the feed so cache invalidation works
// the same as against a remote server.
type LocalGateway struct {
	db            *DB
	feed          *realtime.LocalFeed
	sessionUserID string
}

// NewLocalGateway wires a gateway over db. The session member is loaded from
// the settings table, created on first run.
func NewLocalGateway(db *DB, feed *realtime.LocalFeed, userName string) (*LocalGateway, error) {
	sessionID, err := ensureSessionMember(db, userName)
	if err != nil {
		return nil, err
	}
	return &LocalGateway{
		db:            db,
		feed:          feed,
		sessionUserID: sessionID,
	}, nil
}

func ensureSessionMember(db *DB, userName string) (string, error) {
	id, err := db.GetSetting(sessionUserKey)
	if err != nil {
		return "", err
	}
	if id != "" {
		if _, err := db.GetMember(id); err == nil {
			return id, nil
		}
	}

	if userName == "" {
		userName = "You"
	}
	member, err := db.CreateMember(&models.TeamMember{
		Name: userName,
		Role: models.RoleAdmin,
	})
	if err != nil {
		return "", err
	}
	if err := db.SetSetting(sessionUserKey, member.ID); err != nil {
		return "", err
	}
	glog.Infof("[gw]created session member %s", member.ID)
	return member.ID, nil
}

func (g *LocalGateway) SessionUserID() string {
	return g.sessionUserID
}

func (g *LocalGateway) Fetch(ctx context.Context, kind models.Kind, params gateway.Params) ([]models.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, &gateway.NetworkError{Err: err}
	}

	switch kind {
	case models.KindProject:
		projects, err := g.db.ListProjects()
		if err != nil {
			return nil, mapDBError(err, "")
		}
		return asEntities(projects), nil
	case models.KindTask:
		tasks, err := g.db.ListTasks()
		if err != nil {
			return nil, mapDBError(err, "")
		}
		return asEntities(tasks), nil
	case models.KindComment:
		comments, err := g.db.ListComments(params["task_id"])
		if err != nil {
			return nil, mapDBError(err, "")
		}
		return asEntities(comments), nil
	case models.KindMember:
		members, err := g.db.ListMembers()
		if err != nil {
			return nil, mapDBError(err, "")
		}
		return asEntities(members), nil
	}
	return nil, &gateway.ValidationError{Reason: fmt.Sprintf("unknown kind %q", kind)}
}

func (g *LocalGateway) Submit(ctx context.Context, kind models.Kind, op gateway.Operation, entity models.Entity) (models.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, &gateway.NetworkError{Err: err}
	}
	if entity.EntityKind() != kind {
		return nil, &gateway.ValidationError{Reason: fmt.Sprintf("entity kind %q does not match %q", entity.EntityKind(), kind)}
	}

	confirmed, err := g.submit(kind, op, entity)
	if err != nil {
		return nil, mapDBError(err, entity.EntityID())
	}

	if g.feed != nil {
		g.feed.Publish(realtime.Event{
			Kind: kind,
			Type: realtime.EventType(op),
			ID:   confirmed.EntityID(),
		})
	}
	return confirmed, nil
}

func (g *LocalGateway) submit(kind models.Kind, op gateway.Operation, entity models.Entity) (models.Entity, error) {
	switch e := entity.(type) {
	case *models.Project:
		switch op {
		case gateway.OpInsert:
			return g.db.CreateProject(e)
		case gateway.OpUpdate:
			return g.db.UpdateProject(e)
		}
	case *models.Task:
		switch op {
		case gateway.OpInsert:
			return g.db.CreateTask(e)
		case gateway.OpUpdate:
			return g.db.UpdateTask(e)
		}
	case *models.TeamMember:
		switch op {
		case gateway.OpInsert:
			return g.db.CreateMember(e)
		case gateway.OpUpdate:
			return g.db.UpdateMember(e)
		case gateway.OpDelete:
			if err := g.db.DeleteMember(e.ID); err != nil {
				return nil, err
			}
			return e, nil
		}
	case *models.Comment:
		if op == gateway.OpInsert {
			return g.db.CreateComment(e)
		}
	}
	return nil, &gateway.ValidationError{Reason: fmt.Sprintf("unsupported %s on %s", op, kind)}
}

// mapDBError translates database failures into the gateway error taxonomy
func mapDBError(err error, id string) error {
	var ve *gateway.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	if errors.Is(err, errRowMissing) || errors.Is(err, sql.ErrNoRows) {
		return &gateway.NotFoundError{ID: id}
	}
	msg := err.Error()
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return &gateway.ValidationError{Reason: "referenced record does not exist"}
	}
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return &gateway.ConflictError{Reason: msg}
	}
	return &gateway.NetworkError{Err: err}
}

func asEntities[E models.Entity](records []E) []models.Entity {
	entities := make([]models.Entity, len(records))
	for i, r := range records {
		entities[i] = r
	}
	return entities
}
