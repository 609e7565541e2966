package scheduler

import (
	"time"

	"risk-insight/logging"
)

// Loop réveille périodiquement la planification et lance le job au
// plus une fois par minute correspondante, même si plusieurs réveils
// tombent dans la même minute.
type Loop struct {
	schedule *Schedule
	interval time.Duration
	logger   *logging.Logger
	run      func() error

	lastFired int // index de minute du dernier déclenchement, -1 au départ
	lastDay   int // jour de l'année associé
}

// NewLoop valide l'expression cron au démarrage : une expression
// invalide est une erreur fatale, pas un job silencieusement muet.
func NewLoop(cronExpr string, interval time.Duration, logger *logging.Logger, run func() error) (*Loop, error) {
	schedule, err := Parse(cronExpr)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Loop{
		schedule:  schedule,
		interval:  interval,
		logger:    logger,
		run:       run,
		lastFired: -1,
		lastDay:   -1,
	}, nil
}

// Start boucle jusqu'à la fermeture de stop. Les erreurs du job sont
// loggées et la boucle continue.
func (l *Loop) Start(stop <-chan struct{}) {
	l.logger.Writef("[INFO] scheduler started, cron=%q interval=%s", l.schedule, l.interval)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			l.logger.Write("[INFO] scheduler stopped")
			return
		case now := <-ticker.C:
			l.tick(now)
		}
	}
}

// tick fait avancer la boucle d'un réveil. Exposé pour les tests avec
// une horloge pilotée.
func (l *Loop) tick(now time.Time) {
	if !l.schedule.Matches(now) {
		return
	}
	bucket := now.Hour()*60 + now.Minute()
	if bucket == l.lastFired && now.YearDay() == l.lastDay {
		return
	}
	l.lastFired = bucket
	l.lastDay = now.YearDay()

	l.logger.Writef("[INFO] scheduled report triggered at %s", now.Format("2006-01-02 15:04"))
	if err := l.run(); err != nil {
		l.logger.Writef("[ERROR] scheduled report failed: %v", err)
	}
}
