package schedsvc

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/evaluation"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/level"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/program"
	"github.com/juanpablomonsalvezb-alt/barkley-instituto-sub001/core/user"
)

// ReleaseReminder emails enrolled students on the morning an evaluation slot
// releases. Best effort: a failed scan is logged and retried next day.
type ReleaseReminder struct {
	cron     *cron.Cron
	evalRepo evaluation.Repository
	lvlRepo  level.Repository
	usrSvc   user.ServiceInterface
	mailSvc  core.EmailService
	logger   core.Logger
	now      func() time.Time
}

func NewReleaseReminder(
	evalRepo evaluation.Repository,
	lvlRepo level.Repository,
	usrSvc user.ServiceInterface,
	mailSvc core.EmailService,
	logger core.Logger,
) *ReleaseReminder {
	return &ReleaseReminder{
		cron:     cron.New(),
		evalRepo: evalRepo,
		lvlRepo:  lvlRepo,
		usrSvc:   usrSvc,
		mailSvc:  mailSvc,
		logger:   logger,
		now:      time.Now,
	}
}

// Start schedules the daily scan at 08:00 server time.
func (r *ReleaseReminder) Start() {
	_, err := r.cron.AddFunc("0 8 * * *", func() {
		if err := r.Run(context.Background()); err != nil {
			r.logger.Error(fmt.Sprintf("release reminder run: %v", err), err)
		}
	})
	if err != nil {
		r.logger.Error(fmt.Sprintf("scheduling release reminder: %v", err), err)
		return
	}
	r.cron.Start()
}

func (r *ReleaseReminder) Stop() {
	<-r.cron.Stop().Done()
}

// Run performs one scan: every slot releasing today is announced to the
// students of its level.
func (r *ReleaseReminder) Run(ctx context.Context) error {
	slots, err := r.evalRepo.QueryReleasedOn(ctx, r.now())
	if err != nil {
		return err
	}

	for _, slot := range slots {
		if slot.Evaluation == nil {
			continue
		}
		ls, err := r.lvlRepo.GetLevelSubjectByID(ctx, slot.Evaluation.LevelSubjectID)
		if err != nil {
			r.logger.Warn(fmt.Sprintf("release reminder: level subject %s: %v", slot.Evaluation.LevelSubjectID, err))
			continue
		}

		students, err := r.usrSvc.Filter(ctx, user.QueryFilter{Roles: user.StudentRoles})
		if err != nil {
			return err
		}

		msgs := make([]*core.EmailMessage, 0, len(students))
		for _, usr := range students {
			if !usr.IsActive || usr.LevelID == nil || *usr.LevelID != ls.LevelID {
				continue
			}
			msgs = append(msgs, &core.EmailMessage{
				To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
				Subject: fmt.Sprintf("Nueva evaluación disponible: %s", slot.Title),
				BodyStr: fmt.Sprintf(
					"Hola %s,\n\nLa evaluación %d del módulo %d de %s está disponible desde hoy, %s.\n",
					usr.Name, slot.Number, slot.Evaluation.ModuleNumber, ls.Subject,
					program.FormatDateLong(slot.ReleaseDate),
				),
			})
		}
		if len(msgs) > 0 {
			r.mailSvc.SendMessages(msgs...)
		}
	}
	return nil
}
