package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// CreateGroup persists a new group. The owner is added to the member list
// if missing.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if group.Type == "" {
		group.Type = models.GroupOther
	}
	if group.Currency == "" {
		group.Currency = models.DefaultCurrency
	}
	if !group.IsMember(group.OwnerID) {
		group.Members = append([]string{group.OwnerID}, group.Members...)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, description, type, owner_id, currency, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Description, string(group.Type), group.OwnerID,
		group.Currency, group.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i, member := range group.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, member_id, position) VALUES (?, ?, ?)",
			group.ID, member, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanGroup(row scanner) (*models.Group, error) {
	g := &models.Group{}
	var groupType string
	var createdAt int64
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &groupType, &g.OwnerID, &g.Currency, &createdAt); err != nil {
		return nil, err
	}
	g.Type = models.GroupType(groupType)
	g.CreatedAt = fromUnix(createdAt)
	return g, nil
}

// GetGroup retrieves a group by ID with its members in join order.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := scanGroup(s.db.QueryRowContext(ctx,
		`SELECT id, name, description, type, owner_id, currency, created_at
		 FROM groups WHERE id = ?`, groupID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := s.groupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

func (s *SQLiteStore) groupMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id FROM group_members WHERE group_id = ? ORDER BY position", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

// ListGroupsByMember retrieves all groups memberID belongs to, newest first.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, memberID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, g.type, g.owner_id, g.currency, g.created_at
		 FROM groups g JOIN group_members m ON m.group_id = g.id
		 WHERE m.member_id = ? ORDER BY g.created_at DESC, g.name`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by member: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	rows.Close()

	for _, g := range groups {
		if g.Members, err = s.groupMembers(ctx, g.ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// UpdateGroup writes name, description, type and currency.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET name = ?, description = ?, type = ?, currency = ? WHERE id = ?",
		group.Name, group.Description, string(group.Type), group.Currency, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return requireAffected(res, "group", group.ID)
}

// DeleteGroup removes a group by ID. Members and expenses cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return requireAffected(res, "group", groupID)
}
