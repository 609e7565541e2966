package worker

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"risk-insight/config"
	"risk-insight/logging"
	"risk-insight/pipeline"
	"risk-insight/store"
)

// ErrQueueFull est renvoyée quand la file d'attente est saturée ; le
// client doit réessayer plus tard.
var ErrQueueFull = errors.New("report queue is full")

const queueCapacity = 16

// Request, les paramètres de génération soumis par un client.
type Request struct {
	Sample bool
	APIKey string
	Vaults []string
	Format string
	Owner  string
}

// Pool traite les générations de rapports avec un nombre borné de
// workers. La file est un canal bufferisé : Submit n'attend jamais.
type Pool struct {
	store   *Store
	history *store.History
	queue   chan Job
	rcfg    *config.ReportConfig
	cfg     *config.Config
	logger  *logging.Logger
	apiKey  string

	mu       sync.Mutex
	requests map[string]Request
}

// StartReportWorkers démarre num workers et retourne le pool prêt à
// recevoir des soumissions. history peut être nil (pas de persistance).
func StartReportWorkers(num int, cfg *config.Config, rcfg *config.ReportConfig, apiKey string, history *store.History, logger *logging.Logger) *Pool {
	if num <= 0 {
		num = 1
	}
	p := &Pool{
		store:    NewStore(),
		history:  history,
		queue:    make(chan Job, queueCapacity),
		rcfg:     rcfg,
		cfg:      cfg,
		logger:   logger,
		apiKey:   apiKey,
		requests: make(map[string]Request),
	}
	for i := 0; i < num; i++ {
		go p.reportWorker()
	}
	return p
}

// Store expose l'état des jobs pour l'API statut.
func (p *Pool) Store() *Store { return p.store }

// Submit enfile une génération et retourne l'id du job.
func (p *Pool) Submit(req Request) (string, error) {
	id := uuid.NewString()[:8]
	job := Job{
		ID:        id,
		Status:    StatusRunning,
		Message:   "Queued",
		Owner:     req.Owner,
		Format:    strings.ToLower(req.Format),
		CreatedAt: time.Now(),
	}
	if job.Format == "" {
		job.Format = "pdf"
	}

	p.store.Set(job)
	p.mu.Lock()
	p.requests[id] = req
	p.mu.Unlock()

	select {
	case p.queue <- job:
		p.logger.Writef("[QUEUE] id=%s owner=%s format=%s sample=%t", id, req.Owner, job.Format, req.Sample)
		return id, nil
	default:
		p.store.Set(Job{ID: id, Status: StatusError, Error: ErrQueueFull.Error(), Owner: req.Owner, CreatedAt: job.CreatedAt})
		return "", ErrQueueFull
	}
}

func (p *Pool) reportWorker() {
	for job := range p.queue {
		p.process(job)
	}
}

func (p *Pool) process(job Job) {
	p.mu.Lock()
	req := p.requests[job.ID]
	delete(p.requests, job.ID)
	p.mu.Unlock()

	p.logger.Writef("[START] id=%s owner=%s", job.ID, job.Owner)

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = p.apiKey
	}

	// L'id du job entre dans le nom de fichier : deux jobs du même
	// jour et du même format ne doivent jamais écrire le même artefact.
	outName := fmt.Sprintf("lending_risk_report_%s_%s.%s",
		time.Now().Format("2006-01-02"), job.ID, job.Format)

	result, err := pipeline.Run(pipeline.Request{
		Sample:     req.Sample,
		APIKey:     apiKey,
		Vaults:     req.Vaults,
		Format:     job.Format,
		OutputPath: filepath.Join(p.cfg.Server.OutputDir, outName),
	}, p.rcfg, p.cfg.Server.OutputDir, p.logger, func(msg string) {
		p.store.SetMessage(job.ID, msg)
	})

	if err != nil {
		p.logger.Writef("[FAIL] id=%s: %v", job.ID, err)
		job.Status = StatusError
		job.Error = err.Error()
		job.Message = "Generation failed"
		p.store.Set(job)
		p.record(job)
		return
	}

	job.Status = StatusDone
	job.Message = "Report ready"
	job.Path = result.Path
	job.Filename = filepath.Base(result.Path)
	job.Size = result.Size
	p.store.Set(job)
	p.record(job)
	p.logger.Writef("[COMPLETE] id=%s file=%s size=%d", job.ID, job.Filename, job.Size)
}

func (p *Pool) record(job Job) {
	if p.history == nil {
		return
	}
	if err := p.history.Add(store.Entry{
		ID:        job.ID,
		Status:    string(job.Status),
		Filename:  job.Filename,
		SizeBytes: job.Size,
		CreatedAt: job.CreatedAt,
	}); err != nil {
		p.logger.Writef("[WARN] history insert failed for id=%s: %v", job.ID, err)
	}
}

// String pour les logs de debug.
func (j Job) String() string {
	return fmt.Sprintf("job %s [%s] %s", j.ID, j.Status, j.Message)
}
