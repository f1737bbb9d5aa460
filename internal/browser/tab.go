package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Tab is the page the engine watches.
type Tab struct {
	Page    *rod.Page
	PageURL string
}

// OpenTab opens pageURL in a new tab, or reuses an open tab whose URL
// starts with pageURL when attached to a remote browser.
func (b *Browser) OpenTab(ctx context.Context, pageURL string) (*Tab, error) {
	log := b.cfg.Logger

	if b.cfg.RemoteURL != "" {
		if page := b.findTab(pageURL); page != nil {
			log.Info("browser: attached to open tab", "url", pageURL)
			return &Tab{Page: page.Context(ctx), PageURL: pageURL}, nil
		}
	}

	var page *rod.Page
	var err error
	if b.cfg.Stealth {
		page, err = stealth.Page(b.rod)
	} else {
		page, err = b.rod.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	if bl := newBlockList(b.cfg.ResourceBlocking); len(bl) > 0 {
		if err := bl.install(page); err != nil {
			page.Close()
			return nil, fmt.Errorf("browser: resource blocking: %w", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, b.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{Page: page.Context(ctx), PageURL: pageURL}, nil
}

func (b *Browser) findTab(prefix string) *rod.Page {
	pages, err := b.rod.Pages()
	if err != nil {
		return nil
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if strings.HasPrefix(info.URL, prefix) {
			return p
		}
	}
	return nil
}

// HTML serialises the current document.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	res, err := t.Page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return res.Value.Str(), nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}

// resourceAliases maps the config names to CDP resource types.
var resourceAliases = map[string]proto.NetworkResourceType{
	"images":      proto.NetworkResourceTypeImage,
	"fonts":       proto.NetworkResourceTypeFont,
	"media":       proto.NetworkResourceTypeMedia,
	"stylesheets": proto.NetworkResourceTypeStylesheet,
	"scripts":     proto.NetworkResourceTypeScript,
}

// blockList holds lower-cased CDP resource type names. Unknown config names
// are taken as raw CDP types ("xhr", "fetch").
type blockList map[string]bool

func newBlockList(names []string) blockList {
	bl := make(blockList, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if t, ok := resourceAliases[n]; ok {
			n = strings.ToLower(string(t))
		}
		if n != "" {
			bl[n] = true
		}
	}
	return bl
}

func (bl blockList) blocks(t proto.NetworkResourceType) bool {
	return bl[strings.ToLower(string(t))]
}

// install fails matching requests on page for the page's lifetime.
func (bl blockList) install(page *rod.Page) error {
	router := page.HijackRequests()
	err := router.Add("*", "", func(h *rod.Hijack) {
		if bl.blocks(h.Request.Type()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return err
	}
	go router.Run()
	return nil
}
