package usecase

import (
	"context"
	"fmt"
	"strings"

	"fasttrack/internal/modules/fasting/domain"
	fastingdto "fasttrack/internal/modules/fasting/dto"
	fastingin "fasttrack/internal/modules/fasting/port/in"
	"fasttrack/internal/modules/fasting/service"
	"fasttrack/internal/platform/clock"
	"fasttrack/internal/platform/dates"
	apperrors "fasttrack/internal/platform/errors"
)

type Interactor struct {
	engine  *service.Engine
	runtime *service.Runtime
	clock   clock.Clock
	dates   *dates.Parser
}

func NewInteractor(engine *service.Engine, runtime *service.Runtime, clock clock.Clock) fastingin.Usecase {
	return &Interactor{engine: engine, runtime: runtime, clock: clock, dates: dates.NewParser()}
}

func (i *Interactor) SelectProtocol(ctx context.Context, protocol string) error {
	return i.engine.SelectProtocol(ctx, domain.ParseProtocol(protocol))
}

func (i *Interactor) Start(ctx context.Context) (fastingdto.SessionOutput, error) {
	s, err := i.engine.Start(ctx)
	if err != nil {
		return fastingdto.SessionOutput{}, err
	}
	return toOutput(s), nil
}

func (i *Interactor) Stop(ctx context.Context) (fastingdto.StopOutput, error) {
	s, path, err := i.engine.Stop(ctx)
	if err != nil && s.ID == "" {
		return fastingdto.StopOutput{}, err
	}
	return fastingdto.StopOutput{Session: toOutput(s), JournalPath: path}, err
}

func (i *Interactor) Status(ctx context.Context) (fastingdto.StatusOutput, error) {
	st, err := i.engine.Status(ctx)
	out := fastingdto.StatusOutput{
		State:      st.State.String(),
		Protocol:   st.Protocol.String(),
		Hydrated:   st.Hydrated,
		Identified: st.Identified,
		Notice:     st.Notice,
		Progress: fastingdto.ProgressOutput{
			Elapsed:   st.Progress.Elapsed,
			Remaining: st.Progress.Remaining,
			Percent:   st.Progress.Percent,
		},
	}
	if st.Active != nil {
		active := toOutput(*st.Active)
		out.Active = &active
	}
	if st.Finished != nil {
		finished := toOutput(*st.Finished)
		out.Finished = &finished
	}
	return out, err
}

func (i *Interactor) AddManual(ctx context.Context, input fastingdto.ManualInput) (fastingdto.SessionOutput, error) {
	start := input.Start
	if start.IsZero() && strings.TrimSpace(input.StartText) != "" {
		parsed, err := i.dates.Parse(input.StartText, i.clock.Now())
		if err != nil {
			return fastingdto.SessionOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		start = parsed
	}
	s, err := i.engine.AddManual(ctx, domain.ManualEntry{
		Protocol:    domain.ParseProtocol(input.Protocol),
		StartTime:   start,
		Completed:   input.Completed,
		ActualHours: input.ActualHours,
		Duration:    input.Duration,
	})
	if err != nil {
		return fastingdto.SessionOutput{}, err
	}
	return toOutput(s), nil
}

func (i *Interactor) History(_ context.Context) ([]fastingdto.SessionOutput, error) {
	history := i.engine.History()
	out := make([]fastingdto.SessionOutput, 0, len(history))
	for _, s := range history {
		out = append(out, toOutput(s))
	}
	return out, nil
}

func (i *Interactor) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", apperrors.ErrInvalidInput)
	}
	return i.engine.Delete(ctx, id)
}

func (i *Interactor) Migrate(ctx context.Context) (fastingdto.MigrateOutput, error) {
	res, err := i.engine.Migrate(ctx)
	return fastingdto.MigrateOutput{Migrated: res.Migrated, Failed: res.Failed}, err
}

func (i *Interactor) SyncNow(ctx context.Context) (fastingdto.SyncOutput, error) {
	sessionID, remoteID, err := i.engine.SyncNow(ctx)
	return fastingdto.SyncOutput{SessionID: sessionID, RemoteID: remoteID}, err
}

func (i *Interactor) Export(ctx context.Context) (fastingdto.ExportOutput, error) {
	paths, err := i.engine.Export(ctx)
	return fastingdto.ExportOutput{Paths: paths}, err
}

func (i *Interactor) Run(ctx context.Context) error {
	if i.runtime == nil {
		return fmt.Errorf("runtime is not configured")
	}
	return i.runtime.Run(ctx)
}

func (i *Interactor) Close() error {
	i.engine.Close()
	return nil
}

func toOutput(s domain.Session) fastingdto.SessionOutput {
	return fastingdto.SessionOutput{
		ID:            s.ID,
		Protocol:      s.Protocol.String(),
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		TargetHours:   s.TargetDuration,
		ActualHours:   s.ActualDuration,
		Completed:     s.Completed,
		ManuallyAdded: s.ManuallyAdded,
		InProgress:    s.InProgress(),
	}
}
