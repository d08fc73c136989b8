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

package inputs

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/antst/thermoplant/internal"
)

// File is a recorded or synthetic sequence of step inputs.
type File struct {
	Steps []internal.StepInput `yaml:"steps"`
}

// Load reads a step input file. A step without a timestamp follows the
// previous one by step; the first step needs one.
func Load(path string, step time.Duration) ([]internal.StepInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open inputs file")
	}
	defer f.Close()

	return Read(f, step)
}

func Read(r io.Reader, step time.Duration) ([]internal.StepInput, error) {
	var doc File
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to unmarshal inputs")
	}

	for i := range doc.Steps {
		s := &doc.Steps[i]
		if !s.Time.IsZero() {
			continue
		}
		if i == 0 {
			return nil, errors.New("first step has no time")
		}
		s.Time = doc.Steps[i-1].Time.Add(step)
	}
	return doc.Steps, nil
}
