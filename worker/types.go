package worker

import (
	"time"
)

// Statuts possibles d'un job de rapport
type JobStatus string

const (
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusError   JobStatus = "error"
)

// Job, l'état d'une génération telle qu'exposée par l'API statut.
// Les mises à jour remplacent la valeur entière dans le store, jamais
// de mutation partagée.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Message   string    `json:"message"`
	Filename  string    `json:"filename,omitempty"`
	Size      int64     `json:"size,omitempty"`
	Error     string    `json:"error,omitempty"`
	Owner     string    `json:"-"`
	Path      string    `json:"-"`
	Format    string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}
