package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

// Operation is the kind of write submitted to the backing store
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Params scopes a fetch to a subset of a collection. Nil means the whole
// collection.
type Params map[string]string

// Gateway performs fetch and write operations against the remote entity
// store. Implementations must fail with the typed errors in this package
// (ValidationError, NetworkError, AuthError, ConflictError, NotFoundError)
// so callers can react per failure class.
type Gateway interface {
	// Fetch returns the records of a kind matching params, in server order
	Fetch(ctx context.Context, kind models.Kind, params Params) ([]models.Entity, error)

	// Submit applies a single write and returns the server-confirmed record.
	// Delete returns the entity as it was before removal.
	Submit(ctx context.Context, kind models.Kind, op Operation, entity models.Entity) (models.Entity, error)

	// SessionUserID is the team member id of the authenticated user
	SessionUserID() string
}

// DecodeRecords unmarshals a JSON array of raw records of the given kind
func DecodeRecords(kind models.Kind, data []byte) ([]models.Entity, error) {
	switch kind {
	case models.KindProject:
		return decodeAs[*models.Project](data)
	case models.KindTask:
		return decodeAs[*models.Task](data)
	case models.KindComment:
		return decodeAs[*models.Comment](data)
	case models.KindMember:
		return decodeAs[*models.TeamMember](data)
	}
	return nil, fmt.Errorf("decode records: unknown kind %q", kind)
}

// DecodeRecord unmarshals a single raw record of the given kind
func DecodeRecord(kind models.Kind, data []byte) (models.Entity, error) {
	switch kind {
	case models.KindProject:
		return decodeOne[*models.Project](data)
	case models.KindTask:
		return decodeOne[*models.Task](data)
	case models.KindComment:
		return decodeOne[*models.Comment](data)
	case models.KindMember:
		return decodeOne[*models.TeamMember](data)
	}
	return nil, fmt.Errorf("decode record: unknown kind %q", kind)
}

func decodeAs[E models.Entity](data []byte) ([]models.Entity, error) {
	var records []E
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	entities := make([]models.Entity, len(records))
	for i, r := range records {
		entities[i] = r
	}
	return entities, nil
}

func decodeOne[E models.Entity](data []byte) (models.Entity, error) {
	var record E
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return record, nil
}
