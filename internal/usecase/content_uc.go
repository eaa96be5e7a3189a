// File: internal/usecase/content_uc.go
package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/logging"
	"physical-ai-textbook/internal/infra/metrics"
)

// ContentSwitcher toggles a page between its original text, a version
// rewritten for the signed-in reader, and an Urdu translation.
type ContentSwitcher struct {
	api     adapter.ContentAPI
	session SessionReader
	tr      Translator
	log     *zerolog.Logger

	mu           sync.Mutex
	view         model.ContentView
	status       model.RequestStatus
	original     string
	personalized string
	translated   string
}

func NewContentSwitcher(api adapter.ContentAPI, session SessionReader, tr Translator, logger *zerolog.Logger) *ContentSwitcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ContentSwitcher{
		api:     api,
		session: session,
		tr:      tr,
		log:     logger,
		view:    model.ViewOriginal,
		status:  model.RequestIdle,
	}
}

func (c *ContentSwitcher) View() model.ContentView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *ContentSwitcher) Status() model.RequestStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Content returns the text of the active view.
func (c *ContentSwitcher) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.view {
	case model.ViewPersonalized:
		return c.personalized
	case model.ViewTranslated:
		return c.translated
	}
	return c.original
}

// SetOriginal loads the page text shown in the original view.
func (c *ContentSwitcher) SetOriginal(content string) {
	c.mu.Lock()
	c.original = content
	c.mu.Unlock()
}

func (c *ContentSwitcher) ShowOriginal() {
	c.mu.Lock()
	c.view = model.ViewOriginal
	c.mu.Unlock()
}

// Personalize requires a signed-in user.
func (c *ContentSwitcher) Personalize(ctx context.Context, content, pagePath string) error {
	if c.session == nil || c.session.User() == nil {
		return &domain.ContentError{Op: "personalize", Message: c.tr.T("content.login_required"), Err: domain.ErrLoginRequired}
	}
	if err := c.begin("personalize", content); err != nil {
		return err
	}
	resp, err := c.api.Personalize(ctx, adapter.PersonalizeRequest{Content: content, PagePath: pagePath})
	if err != nil {
		return c.fail("personalize", "content.personalize_failed", err)
	}
	c.mu.Lock()
	c.personalized = resp.PersonalizedContent
	c.view = model.ViewPersonalized
	c.status = model.RequestSucceeded
	c.mu.Unlock()
	metrics.IncContentRequest("personalize", "ok")
	return nil
}

func (c *ContentSwitcher) Translate(ctx context.Context, content string) error {
	if err := c.begin("translate", content); err != nil {
		return err
	}
	resp, err := c.api.Translate(ctx, adapter.TranslateRequest{Content: content})
	if err != nil {
		return c.fail("translate", "content.translate_failed", err)
	}
	c.mu.Lock()
	c.translated = resp.TranslatedContent
	c.view = model.ViewTranslated
	c.status = model.RequestSucceeded
	c.mu.Unlock()
	metrics.IncContentRequest("translate", "ok")
	return nil
}

func (c *ContentSwitcher) begin(op, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == model.RequestPending {
		return &domain.ContentError{Op: op, Message: c.tr.T("chat.thinking"), Err: domain.ErrRequestPending}
	}
	c.status = model.RequestPending
	if c.original == "" {
		c.original = content
	}
	return nil
}

// fail keeps the current view.
func (c *ContentSwitcher) fail(op, key string, err error) error {
	c.mu.Lock()
	c.status = model.RequestFailed
	c.mu.Unlock()
	metrics.IncContentRequest(op, "error")
	c.log.Warn().Err(err).Str("op", op).Msg("content request failed")
	return &domain.ContentError{Op: op, Message: c.tr.T(key), Err: err}
}
