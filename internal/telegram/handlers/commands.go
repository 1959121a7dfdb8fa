package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/career-console/internal/console"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/pkg/logger"
	"github.com/futig/career-console/internal/telegram/render"
	"github.com/futig/career-console/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// HandleCommand handles bot commands
func (h *Handler) HandleCommand(ctx context.Context, msg *Message) {
	c, ctx := h.console(ctx, msg)
	ctx = logger.WithAction(ctx, "command_"+msg.Command)

	ctxzap.Info(ctx, "command received", zap.String("command", msg.Command))

	switch msg.Command {
	case "start":
		h.send(msg.ChatID, render.MsgWelcome, nil)
		if s := c.Session.Current(); s != nil {
			h.send(msg.ChatID, render.AnalysisCard(s), h.keyboard.MainMenuKeyboard())
		} else {
			h.send(msg.ChatID, render.MsgSendResume, nil)
		}
	case "help":
		h.send(msg.ChatID, render.MsgHelp, nil)
	case "new":
		if c.Session.Current() == nil {
			h.startOver(ctx, c, msg)
			return
		}
		h.send(msg.ChatID, render.MsgConfirmNew, h.keyboard.ConfirmNewKeyboard())
	case "cancel":
		h.setMode(ctx, msg.UserID, state.ModeIdle)
		h.send(msg.ChatID, render.MsgCancelled, nil)
	case "tailor":
		h.tailor(ctx, c, msg, msg.Args)
	case "interview":
		h.startInterview(ctx, c, msg)
	case "next":
		h.moveQuestion(ctx, c, msg, 1)
	case "prev":
		h.moveQuestion(ctx, c, msg, -1)
	case "projects":
		h.projects(ctx, c, msg)
	case "schedule":
		h.schedule(ctx, c, msg)
	case "jobs":
		h.jobs(ctx, c, msg, msg.Args)
	case "companies":
		h.companies(ctx, c, msg)
	case "report":
		if msg.Args != "" {
			h.report(ctx, c, msg, entity.ResultFormat(strings.ToLower(msg.Args)))
			return
		}
		h.send(msg.ChatID, render.MsgChooseFormat, h.keyboard.ReportFormatKeyboard())
	default:
		h.send(msg.ChatID, render.MsgUnknownCommand, nil)
	}
}

// startOver discards the session and every piece of chat state
func (h *Handler) startOver(ctx context.Context, c *console.Console, msg *Message) {
	c.Reset(ctx)
	if err := h.states.Clear(ctx, msg.UserID); err != nil {
		ctxzap.Error(ctx, "failed to clear chat state", zap.Error(err))
	}
	h.send(msg.ChatID, render.MsgNewSession, nil)
}

// tailor runs résumé tailoring, or asks for the job description when jd is empty
func (h *Handler) tailor(ctx context.Context, c *console.Console, msg *Message, jd string) {
	if _, err := c.Session.RequireTicket(); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	if strings.TrimSpace(jd) == "" {
		h.setMode(ctx, msg.UserID, state.ModeAwaitJD)
		h.send(msg.ChatID, render.MsgAskJD, nil)
		return
	}

	h.setMode(ctx, msg.UserID, state.ModeIdle)

	typing := startTyping(ctx, h.sender, msg.ChatID)
	res, err := c.Tailor.Run(ctx, jd)
	typing.Stop()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.send(msg.ChatID, render.TailorCard(res), h.keyboard.MainMenuKeyboard())
}

func (h *Handler) startInterview(ctx context.Context, c *console.Console, msg *Message) {
	typing := startTyping(ctx, h.sender, msg.ChatID)
	questions, err := c.Questions.Run(ctx, h.interviewSize)
	typing.Stop()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.setMode(ctx, msg.UserID, state.ModeInterview)
	if len(questions) == 0 {
		h.send(msg.ChatID, render.MsgNoInterview, nil)
		return
	}
	h.send(msg.ChatID, render.QuestionCard(questions[0], len(questions)), h.keyboard.QuestionKeyboard(0, len(questions)))
}

// moveQuestion activates the neighbouring question and shows it
func (h *Handler) moveQuestion(ctx context.Context, c *console.Console, msg *Message, delta int) {
	snap := c.Interview.Snapshot()
	if len(snap.Questions) == 0 {
		h.send(msg.ChatID, render.MsgNoInterview, nil)
		return
	}

	next := min(max(snap.ActiveIndex+delta, 0), len(snap.Questions)-1)
	if err := c.Interview.SelectQuestion(next); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.setMode(ctx, msg.UserID, state.ModeInterview)
	h.showQuestion(c, msg.ChatID)
}

func (h *Handler) showQuestion(c *console.Console, chatID int64) {
	q, ok := c.Interview.Active()
	if !ok {
		h.send(chatID, render.MsgNoInterview, nil)
		return
	}
	total := len(c.Interview.Snapshot().Questions)

	text := render.QuestionCard(q, total)
	if ev, ok := c.Interview.Evaluation(q.Index); ok {
		text += fmt.Sprintf("\n\nLast score: %.1f/10", ev.Score)
	}
	h.send(chatID, text, h.keyboard.QuestionKeyboard(q.Index, total))
}

func (h *Handler) projects(ctx context.Context, c *console.Console, msg *Message) {
	typing := startTyping(ctx, h.sender, msg.ChatID)
	projects, err := c.Projects.Run(ctx, struct{}{})
	typing.Stop()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.send(msg.ChatID, render.ProjectsCard(projects), nil)
}

// schedule shows the study plan and attaches its calendar verbatim
func (h *Handler) schedule(ctx context.Context, c *console.Console, msg *Message) {
	typing := startTyping(ctx, h.sender, msg.ChatID)
	plan, err := c.Schedule.Run(ctx, struct{}{})
	typing.Stop()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.send(msg.ChatID, render.ScheduleCard(plan), nil)
	if plan.ICSDownload == "" {
		h.send(msg.ChatID, render.MsgNoCalendar, nil)
		return
	}
	if err := h.sender.SendDocument(msg.ChatID, "study-plan.ics", []byte(plan.ICSDownload), "Import into your calendar"); err != nil {
		ctxzap.Warn(ctx, "failed to send calendar file", zap.Error(err))
	}
}

func (h *Handler) jobs(ctx context.Context, c *console.Console, msg *Message, location string) {
	typing := startTyping(ctx, h.sender, msg.ChatID)
	search, err := c.Jobs.Run(ctx, entity.JobsTaskRequest{Location: location})
	typing.Stop()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.send(msg.ChatID, render.JobsCard(search), nil)
}

func (h *Handler) companies(ctx context.Context, c *console.Console, msg *Message) {
	list, err := c.Companies()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.send(msg.ChatID, render.CompaniesCard(list), nil)
}

// report exports the interview report of the current batch as a document
func (h *Handler) report(ctx context.Context, c *console.Console, msg *Message, format entity.ResultFormat) {
	rep, err := c.Report()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}
	if len(rep.Items) == 0 {
		h.send(msg.ChatID, render.MsgNoInterview, nil)
		return
	}

	f, err := h.formats.Create(format)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	_ = h.sender.ChatAction(msg.ChatID, tgbotapi.ChatUploadDocument)

	data, err := f.Format(rep)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	filename := "interview-report" + f.FileExtension()
	if err := h.sender.SendDocument(msg.ChatID, filename, data, "Mock interview report"); err != nil {
		ctxzap.Warn(ctx, "failed to send report", zap.Error(err))
	}
}
