//nolint:gochecknoglobals
package mission

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/brawlers/missionboard/internal/callbacks"
	"github.com/brawlers/missionboard/internal/model"
)

const (
	triggerChief = "chief"
	triggerJoin  = "join"
	triggerLeave = "leave"
	triggerKick  = "kick"
	triggerEdit  = "edit"
)

var (
	crewOperationsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "missionboard",
		Name:      "crew_operations_total",
		Help:      "Crew membership operations by result",
	}, []string{"op", "result"})

	transitionsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "missionboard",
		Name:      "mission_transitions_total",
		Help:      "Mission status transitions",
	}, []string{"from", "to", "trigger"})
)

type transitionRecord struct {
	from, to model.Status
	trigger  string
}

// journal collects what one coordinator call changed; it is flushed only
// after the store committed.
type journal struct {
	now         func() time.Time
	events      []*model.MissionEvent
	transitions []transitionRecord
}

func (j *journal) event(t model.EventType, m *model.Mission, brawlerID, actorID uint, crew int) {
	j.events = append(j.events, &model.MissionEvent{
		Type:      t,
		MissionID: m.ID,
		BrawlerID: brawlerID,
		ActorID:   actorID,
		Status:    m.Status,
		CrewCount: crew,
		Time:      j.now(),
	})
}

func (j *journal) transition(from, to model.Status, trigger string) {
	j.transitions = append(j.transitions, transitionRecord{from: from, to: to, trigger: trigger})
}

type notifier struct {
	events *callbacks.Callback[*model.MissionEvent]
	logger *slog.Logger
	now    func() time.Time
}

func newNotifier(events *callbacks.Callback[*model.MissionEvent], logger *slog.Logger) *notifier {
	return &notifier{events: events, logger: logger, now: time.Now}
}

func (n *notifier) journal() *journal {
	return &journal{now: n.now}
}

func (n *notifier) flush(j *journal) {
	for _, t := range j.transitions {
		transitionsMetric.With(prometheus.Labels{
			"from":    string(t.from),
			"to":      string(t.to),
			"trigger": t.trigger,
		}).Inc()
	}

	for _, e := range j.events {
		n.logger.Debug("mission event", slog.String("event", e.String()))
		n.events.Publish(e)
	}
}

func crewResult(op string, err error) {
	res := "ok"

	if err != nil {
		if res = Code(err); res == "" {
			res = "error"
		}
	}

	crewOperationsMetric.With(prometheus.Labels{"op": op, "result": res}).Inc()
}

// logResult logs rejections quietly and infrastructure failures loudly.
func logResult(logger *slog.Logger, op string, missionID, brawlerID uint, err error) {
	if err == nil {
		logger.Info(op, slog.Uint64("mission", uint64(missionID)), slog.Uint64("brawler", uint64(brawlerID)))
		return
	}

	if IsBusiness(err) {
		logger.Debug(op+" rejected", slog.Uint64("mission", uint64(missionID)), slog.Uint64("brawler", uint64(brawlerID)), slog.String("reason", Code(err)))
		return
	}

	logger.Error(op+" failed", slog.Uint64("mission", uint64(missionID)), slog.Uint64("brawler", uint64(brawlerID)), slog.Any("error", err))
}
