package provider

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

// maxInstancesPerEvent caps recurrence expansion so an unbounded rule cannot
// blow up a single query.
const maxInstancesPerEvent = 1000

// SQLStore implements Store over database/sql. It is the shipped binding of
// the provider capability, backed by sqlite or postgres.
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, postgres: driver == "postgres"}
}

func (s *SQLStore) Query(ctx context.Context, q Query) ([]Row, error) {
	projection := "*"
	if len(q.Projection) > 0 {
		projection = strings.Join(q.Projection, ", ")
	}
	query := "SELECT " + projection + " FROM " + q.Table
	if q.Selection != "" {
		query += " WHERE " + q.Selection
	}
	if q.OrderBy != "" {
		query += " ORDER BY " + q.OrderBy
	}

	rows, err := s.db.QueryContext(ctx, s.bind(query), q.Args...)
	if err != nil {
		err := fmt.Errorf("could not query %s: %w", q.Table, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Instances materializes concrete occurrences of the event rows matched by
// q.Selection inside [windowStart, windowEnd]. Recurrence rules are
// interpreted here, on the provider side of the contract; the façade never
// sees a rule. q.Selection is written against the events table columns;
// returned rows carry the master id under ColEventID.
func (s *SQLStore) Instances(ctx context.Context, windowStart, windowEnd int64, q Query) ([]Row, error) {
	masters, err := s.Query(ctx, Query{
		Table: TableEvents,
		Projection: []string{
			ColID, ColCalendarID, ColTitle, ColDescription, ColEventLocation,
			ColCustomAppURI, ColDTStart, ColDTEnd, ColDuration, ColAllDay,
			ColHasAlarm, ColRRule,
		},
		Selection: q.Selection,
		Args:      q.Args,
	})
	if err != nil {
		return nil, err
	}

	instances := make([]Row, 0, len(masters))
	for _, master := range masters {
		instances = append(instances, expandMaster(master, windowStart, windowEnd)...)
	}
	sort.SliceStable(instances, func(i, j int) bool {
		bi, _ := instances[i].Int64(ColBegin)
		bj, _ := instances[j].Int64(ColBegin)
		return bi < bj
	})
	return instances, nil
}

// expandMaster turns one event row into its occurrences within the window.
func expandMaster(master Row, windowStart, windowEnd int64) []Row {
	start, _ := master.Int64(ColDTStart)
	end, _ := master.Int64(ColDTEnd)
	duration, _ := master.Int64(ColDuration)

	length := end - start
	if end == 0 && duration > 0 {
		length = duration
	}
	if length < 0 {
		length = 0
	}

	rule, _ := master.String(ColRRule)
	if rule == "" {
		if start > windowEnd || start+length < windowStart {
			return nil
		}
		return []Row{instanceRow(master, start, start+length)}
	}

	option, err := rrule.StrToROption(rule)
	if err != nil {
		log.Errorf("skipping event with unparsable recurrence rule %q: %v", rule, err)
		return nil
	}
	option.Dtstart = time.UnixMilli(start).UTC()
	r, err := rrule.NewRRule(*option)
	if err != nil {
		log.Errorf("skipping event with invalid recurrence rule %q: %v", rule, err)
		return nil
	}

	occurrences := r.Between(time.UnixMilli(windowStart).UTC(), time.UnixMilli(windowEnd).UTC(), true)
	if len(occurrences) > maxInstancesPerEvent {
		id, _ := master.String(ColID)
		log.Warnf("event %s expansion truncated to %d instances", id, maxInstancesPerEvent)
		occurrences = occurrences[:maxInstancesPerEvent]
	}

	rows := make([]Row, 0, len(occurrences))
	for _, occurrence := range occurrences {
		begin := occurrence.UnixMilli()
		rows = append(rows, instanceRow(master, begin, begin+length))
	}
	return rows
}

// instanceRow projects a master event row into an instance row: the master's
// non-temporal columns with per-occurrence begin/end substituted.
func instanceRow(master Row, begin, end int64) Row {
	row := Row{
		ColEventID: master[ColID],
		ColBegin:   begin,
		ColEnd:     end,
	}
	for _, col := range []string{ColTitle, ColDescription, ColEventLocation, ColCustomAppURI, ColAllDay, ColHasAlarm} {
		if v, ok := master[col]; ok {
			row[col] = v
		}
	}
	return row
}

func (s *SQLStore) Insert(ctx context.Context, table string, values Values) (int64, error) {
	columns, args := splitValues(values)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)

	if s.postgres {
		var id int64
		if err := s.db.QueryRowContext(ctx, s.bind(query+" RETURNING _id"), args...).Scan(&id); err != nil {
			err := fmt.Errorf("could not insert into %s: %w", table, err)
			log.Error(err)
			return 0, err
		}
		return id, nil
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not insert into %s: %w", table, err)
		log.Error(err)
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLStore) BulkInsert(ctx context.Context, table string, values []Values) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	for _, rowValues := range values {
		columns, args := splitValues(rowValues)
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
		if _, err := tx.ExecContext(ctx, s.bind(query), args...); err != nil {
			err := fmt.Errorf("could not bulk insert into %s: %w", table, err)
			log.Error(err)
			return 0, err
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}

func (s *SQLStore) Update(ctx context.Context, table string, values Values, selection string, args ...any) (int64, error) {
	columns, setArgs := splitValues(values)
	assignments := make([]string, len(columns))
	for i, column := range columns {
		assignments[i] = column + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(assignments, ", "))
	if selection != "" {
		query += " WHERE " + selection
	}

	result, err := s.db.ExecContext(ctx, s.bind(query), append(setArgs, args...)...)
	if err != nil {
		err := fmt.Errorf("could not update %s: %w", table, err)
		log.Error(err)
		return 0, err
	}
	return result.RowsAffected()
}

func (s *SQLStore) Delete(ctx context.Context, table string, selection string, args ...any) (int64, error) {
	query := "DELETE FROM " + table
	if selection != "" {
		query += " WHERE " + selection
	}

	result, err := s.db.ExecContext(ctx, s.bind(query), args...)
	if err != nil {
		err := fmt.Errorf("could not delete from %s: %w", table, err)
		log.Error(err)
		return 0, err
	}
	return result.RowsAffected()
}

// bind rewrites `?` placeholders to `$n` for postgres. Selections never
// contain literal question marks, so a plain scan is sufficient.
func (s *SQLStore) bind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitValues returns columns and args in a stable order.
func splitValues(values Values) ([]string, []any) {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	args := make([]any, len(columns))
	for i, column := range columns {
		args[i] = values[column]
	}
	return columns, args
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("could not read result columns: %w", err)
	}

	result := make([]Row, 0, 10)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
