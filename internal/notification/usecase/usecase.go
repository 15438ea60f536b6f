package usecase

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/shandysiswandi/pawhaven/internal/pkg/clock"
	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mail"
	"github.com/shandysiswandi/pawhaven/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

//go:embed templates/*
var templates embed.FS

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Usecase struct {
	cfg       config.Config
	clock     clock.Clocker
	validator validator.Validator
	repoMail  repoMail
	ins       instrument.Instrumentation

	htmlTpl *htmltemplate.Template
	textTpl *texttemplate.Template
}

type Dependency struct {
	Config     config.Config
	Clock      clock.Clocker
	Validator  validator.Validator
	RepoMail   repoMail
	Instrument instrument.Instrumentation
}

func NewNotification(dep Dependency) (*Usecase, error) {
	htmlTpl, err := htmltemplate.New("html").Option("missingkey=zero").ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	textTpl, err := texttemplate.New("text").Option("missingkey=zero").ParseFS(templates, "templates/*.txt")
	if err != nil {
		return nil, err
	}

	return &Usecase{
		cfg:       dep.Config,
		clock:     dep.Clock,
		validator: dep.Validator,
		repoMail:  dep.RepoMail,
		ins:       dep.Instrument,
		htmlTpl:   htmlTpl,
		textTpl:   textTpl,
	}, nil
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

// render executes the html and text variants of one template pair.
func (s *Usecase) render(name string, data map[string]any) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := s.htmlTpl.ExecuteTemplate(&hb, name+".html", data); err != nil {
		return "", "", err
	}
	if err := s.textTpl.ExecuteTemplate(&tb, name+".txt", data); err != nil {
		return "", "", err
	}

	return hb.String(), tb.String(), nil
}

func (s *Usecase) baseEmailTemplateData() map[string]any {
	return map[string]any{
		"support_email": s.cfg.GetString("modules.notification.support_email"),
		"company_name":  s.cfg.GetString("modules.notification.company_name"),
		"year":          s.clock.Now().Format("2006"),
	}
}
