package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketFilter captures list parameters. Nil fields impose no constraint.
type TicketFilter struct {
	UserID   *string
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Category *domain.TicketCategory
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// List returns one page ordered newest first together with the total
	// number of tickets matching the filter.
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
	// UpdateStatus sets the status; a non-nil resolvedBy overwrites the
	// stored value, nil leaves it untouched.
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, resolvedBy *string) (*domain.Ticket, error)
	Assign(ctx context.Context, id, assigneeID string) (*domain.Ticket, error)
	AppendResponse(ctx context.Context, resp *domain.Response) error
	Stats(ctx context.Context) (*domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, user_id, user_name, user_email, subject, description, category,
               priority, status, assigned_to, resolved_by, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (user_id, user_name, user_email, subject, description, category, priority, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.UserID,
		ticket.UserName,
		ticket.UserEmail,
		ticket.Subject,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	responses, err := r.responsesFor(ctx, []string{ticket.ID})
	if err != nil {
		return nil, err
	}
	if thread, ok := responses[ticket.ID]; ok {
		ticket.Responses = thread
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		if !validID(*filter.UserID) {
			return []domain.Ticket{}, 0, nil
		}
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	ids := make([]string, len(tickets))
	for i := range tickets {
		ids[i] = tickets[i].ID
	}
	responses, err := r.responsesFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range tickets {
		if thread, ok := responses[tickets[i].ID]; ok {
			tickets[i].Responses = thread
		}
	}
	return tickets, total, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, resolvedBy *string) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `
        UPDATE tickets SET status=$1, resolved_by=COALESCE($2, resolved_by), updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, resolvedBy, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ticketRepository) Assign(ctx context.Context, id, assigneeID string) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE id=$2`, assigneeID, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// AppendResponse inserts the response and bumps the ticket's updated_at in
// one transaction. The row lock taken by the UPDATE serializes concurrent
// appends to the same ticket; each append is its own row so none are lost.
func (r *ticketRepository) AppendResponse(ctx context.Context, resp *domain.Response) error {
	if !validID(resp.TicketID) {
		return ErrNotFound
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE tickets SET updated_at=NOW() WHERE id=$1`, resp.TicketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	const insert = `
        INSERT INTO ticket_responses (ticket_id, user_id, user_name, message, is_staff_response)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		resp.TicketID,
		resp.UserID,
		resp.UserName,
		resp.Message,
		resp.IsStaffResponse,
	).Scan(&resp.ID, &resp.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) Stats(ctx context.Context) (*domain.TicketStats, error) {
	const totals = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='open'),
               COUNT(*) FILTER (WHERE status='in_progress'),
               COUNT(*) FILTER (WHERE status='resolved')
        FROM tickets`
	stats := &domain.TicketStats{}
	if err := r.pool.QueryRow(ctx, totals).Scan(&stats.Total, &stats.Open, &stats.InProgress, &stats.Resolved); err != nil {
		return nil, err
	}

	var err error
	if stats.ByPriority, err = r.groupCount(ctx, "priority"); err != nil {
		return nil, err
	}
	if stats.ByCategory, err = r.groupCount(ctx, "category"); err != nil {
		return nil, err
	}
	return stats, nil
}

// groupCount is only ever called with a fixed column name.
func (r *ticketRepository) groupCount(ctx context.Context, column string) ([]domain.GroupCount, error) {
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*) FROM tickets GROUP BY %[1]s ORDER BY %[1]s`, column)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.GroupCount{}
	for rows.Next() {
		var group domain.GroupCount
		if err := rows.Scan(&group.Value, &group.Count); err != nil {
			return nil, err
		}
		result = append(result, group)
	}
	return result, rows.Err()
}

func (r *ticketRepository) responsesFor(ctx context.Context, ticketIDs []string) (map[string][]domain.Response, error) {
	result := make(map[string][]domain.Response, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT id, ticket_id, user_id, user_name, message, is_staff_response, created_at
        FROM ticket_responses WHERE ticket_id = ANY($1) ORDER BY created_at ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, parseIDs(ticketIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp domain.Response
		if err := rows.Scan(
			&resp.ID,
			&resp.TicketID,
			&resp.UserID,
			&resp.UserName,
			&resp.Message,
			&resp.IsStaffResponse,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[resp.TicketID] = append(result[resp.TicketID], resp)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.UserName,
		&ticket.UserEmail,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.AssignedTo,
		&ticket.ResolvedBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ticket.Responses = []domain.Response{}
	return &ticket, nil
}
