// Package scheduler déclenche la génération planifiée des rapports.
// L'expression cron est au format 5 champs classique : minute, heure,
// jour du mois, mois, jour de semaine (0 = dimanche).
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// fieldSpec borne un champ cron.
type fieldSpec struct {
	name string
	min  int
	max  int
}

var cronFields = []fieldSpec{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day of month", 1, 31},
	{"month", 1, 12},
	{"day of week", 0, 6},
}

// Schedule est une expression cron compilée. Un ensemble nil signifie
// "*" (tout accepter).
type Schedule struct {
	expr   string
	fields [5]map[int]bool
}

// Parse compile une expression cron à 5 champs. Erreur si le nombre de
// champs, une borne ou la syntaxe d'un terme est invalide.
func Parse(expr string) (*Schedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return nil, fmt.Errorf("invalid cron expression %q: expected 5 fields, got %d", expr, len(parts))
	}
	s := &Schedule{expr: expr}
	for i, part := range parts {
		set, err := parseField(part, cronFields[i])
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
		}
		s.fields[i] = set
	}
	return s, nil
}

func parseField(part string, spec fieldSpec) (map[int]bool, error) {
	if part == "*" {
		return nil, nil
	}
	set := make(map[int]bool)
	for _, term := range strings.Split(part, ",") {
		if after, ok := strings.CutPrefix(term, "*/"); ok {
			step, err := strconv.Atoi(after)
			if err != nil || step <= 0 {
				return nil, fmt.Errorf("%s: bad step %q", spec.name, term)
			}
			// */N retient les valeurs divisibles par N, y compris sur
			// les champs commençant à 1 (jour du mois, mois).
			for v := spec.min; v <= spec.max; v++ {
				if v%step == 0 {
					set[v] = true
				}
			}
			continue
		}
		v, err := strconv.Atoi(term)
		if err != nil {
			return nil, fmt.Errorf("%s: bad value %q", spec.name, term)
		}
		if v < spec.min || v > spec.max {
			return nil, fmt.Errorf("%s: value %d out of range [%d,%d]", spec.name, v, spec.min, spec.max)
		}
		set[v] = true
	}
	return set, nil
}

// Matches indique si l'instant donné tombe dans la planification.
// time.Weekday compte déjà dimanche = 0, aucune conversion nécessaire.
func (s *Schedule) Matches(t time.Time) bool {
	values := [5]int{
		t.Minute(),
		t.Hour(),
		t.Day(),
		int(t.Month()),
		int(t.Weekday()),
	}
	for i, set := range s.fields {
		if set == nil {
			continue
		}
		if !set[values[i]] {
			return false
		}
	}
	return true
}

func (s *Schedule) String() string {
	return s.expr
}
