package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"Niveshak/internal/batch"
	"Niveshak/internal/config"
	"Niveshak/internal/logging"
	"Niveshak/internal/notifier"
)

// Scanner runs a named watchlist.
type Scanner interface {
	Names() ([]string, error)
	Scan(ctx context.Context, name string) (*batch.Report, error)
}

// Sender delivers messages to the chat.
type Sender interface {
	SendAll(ctx context.Context, messages []string, maxRetries int) error
}

// sendRetries is passed to Sender for scheduled reports.
const sendRetries = 3

// Scheduler manages the cron reports and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  Scanner
	Notifier Sender
	Ctx      context.Context

	log *logrus.Entry
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc Scanner, n Sender, logger *logrus.Entry) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Notifier: n,
		Ctx:      ctx,
		log:      logger,
	}
}

// RegisterAll registers one report job per schedule entry.
func (s *Scheduler) RegisterAll(entries []config.ScheduleEntry) error {
	for _, e := range entries {
		name := e.Watchlist
		if _, err := s.Cron.AddFunc(e.Cron, func() { s.RunNow(name) }); err != nil {
			return fmt.Errorf("register report %q (%s): %w", name, e.Cron, err)
		}
		s.log.WithFields(logrus.Fields{"watchlist": name, "cron": e.Cron}).Info("report scheduled")
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.WithField("jobs", len(s.Cron.Entries())).Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow scans a watchlist and posts the report.
func (s *Scheduler) RunNow(name string) {
	s.log.WithField("watchlist", name).Info("running scheduled report")
	s.trySend(s.scan(s.Ctx, name))
}

func (s *Scheduler) scan(ctx context.Context, name string) []string {
	rep, err := s.Scanner.Scan(ctx, name)
	if err != nil {
		s.log.WithError(err).WithField("watchlist", name).Error("scan failed")
		return []string{notifier.FormatError("scan "+name, err)}
	}
	return notifier.FormatReport(rep.Watchlist, rep.Result, rep.Table)
}

// HandleCommand processes a chat command and returns the replies.
// A bare watchlist name is treated as /scan <name>.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) []string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	cmd := strings.ToLower(fields[0])
	// Commands may arrive as /scan@BotName in group chats.
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/lists":
		names, err := s.Scanner.Names()
		if err != nil {
			return []string{notifier.FormatError("list watchlists", err)}
		}
		return []string{notifier.FormatLists(names)}
	case "/scan":
		if len(fields) < 2 {
			return []string{notifier.FormatHelp()}
		}
		return s.scan(ctx, fields[1])
	case "/start", "/help":
		return []string{notifier.FormatHelp()}
	}

	if len(fields) == 1 && s.isList(fields[0]) {
		return s.scan(ctx, fields[0])
	}
	return []string{notifier.FormatHelp()}
}

func (s *Scheduler) isList(name string) bool {
	names, err := s.Scanner.Names()
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (s *Scheduler) trySend(messages []string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendAll(s.Ctx, messages, sendRetries); err != nil {
		s.log.WithError(err).Error("send notification")
	}
}
