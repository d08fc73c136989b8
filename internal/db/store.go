/*
 * Copyright (c) 2023. Anton Starikov -- All Rights Reserved
 *
 * This file is part of THERMOPLANT project.
 *
 * THERMOPLANT is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as the Free Software Foundation,
 * either version 3 of the License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type Run struct {
	ID        string    `db:"id"`
	StartedAt time.Time `db:"started_at"`
	Config    string    `db:"config"`
}

// StepRow is the status of one generator after one step.
type StepRow struct {
	RunID     string    `db:"run_id"`
	Step      int       `db:"step"`
	TS        time.Time `db:"ts"`
	Generator string    `db:"generator"`
	Status    string    `db:"status"`
	Demand    float64   `db:"demand"`
	Supply    float64   `db:"supply"`
}

// TankFlowRow is one balanced tank port after one step.
type TankFlowRow struct {
	RunID string  `db:"run_id"`
	Step  int     `db:"step"`
	Tank  int     `db:"tank"`
	Port  string  `db:"port"`
	Flow  float64 `db:"flow"`
	Temp  float64 `db:"temp"`
}

// Store records simulation runs.
type Store struct {
	db *sqlx.DB
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateRun(ctx context.Context, run Run) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO runs (id, started_at, config) VALUES (:id, :started_at, :config)`, run)
	return errors.Wrapf(err, "create run %s", run.ID)
}

func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	if err := s.db.GetContext(ctx, &run, `SELECT id, started_at, config FROM runs WHERE id = ?`, id); err != nil {
		return nil, errors.Wrapf(err, "get run %s", id)
	}
	return &run, nil
}

// InsertStep writes the rows of one step in a single transaction.
func (s *Store) InsertStep(ctx context.Context, steps []StepRow, flows []TankFlowRow) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin step")
	}
	defer tx.Rollback()

	if len(steps) > 0 {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO steps (run_id, step, ts, generator, status, demand, supply)
			VALUES (:run_id, :step, :ts, :generator, :status, :demand, :supply)`, steps); err != nil {
			return errors.Wrap(err, "insert steps")
		}
	}
	if len(flows) > 0 {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO tank_flows (run_id, step, tank, port, flow, temp)
			VALUES (:run_id, :step, :tank, :port, :flow, :temp)`, flows); err != nil {
			return errors.Wrap(err, "insert tank flows")
		}
	}
	return errors.Wrap(tx.Commit(), "commit step")
}

func (s *Store) Steps(ctx context.Context, runID string) ([]StepRow, error) {
	var rows []StepRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT run_id, step, ts, generator, status, demand, supply FROM steps
		WHERE run_id = ? ORDER BY step, generator`, runID)
	return rows, errors.Wrapf(err, "steps of run %s", runID)
}

func (s *Store) TankFlows(ctx context.Context, runID string, step int) ([]TankFlowRow, error) {
	var rows []TankFlowRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT run_id, step, tank, port, flow, temp FROM tank_flows
		WHERE run_id = ? AND step = ? ORDER BY tank, port`, runID, step)
	return rows, errors.Wrapf(err, "tank flows of run %s step %d", runID, step)
}
