package worker

import (
	"sync"
)

// Store garde l'état des jobs en mémoire, protégé par mutex. Les
// lecteurs reçoivent une copie, les écritures passent par Set qui
// remplace la valeur entière.
type Store struct {
	mu   sync.Mutex
	jobs map[string]Job
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]Job)}
}

func (s *Store) Set(job Job) {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
}

func (s *Store) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

// SetMessage remplace le message de progression d'un job en cours.
func (s *Store) SetMessage(id, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Message = msg
	s.jobs[id] = job
}
