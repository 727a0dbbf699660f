//go:build browser

package web

import (
	"testing"

	"github.com/playwright-community/playwright-go"
)

// newPage starts a headless Chromium page. Run with:
//
//	go test -tags browser ./internal/web/
func newPage(t *testing.T) playwright.Page {
	t.Helper()

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}
	page, err := browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	t.Cleanup(func() {
		page.Close()
		browser.Close()
		pw.Stop()
	})
	return page
}

func TestBrowser_SignupAndUnregister(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	h := newHarness(t)
	page := newPage(t)
	expect := playwright.NewPlaywrightAssertions()

	if _, err := page.Goto(h.front.URL); err != nil {
		t.Fatalf("failed to open board: %v", err)
	}

	if _, err := page.Locator("#activity").SelectOption(playwright.SelectOptionValues{Values: &[]string{"Robotics Club"}}); err != nil {
		t.Fatalf("failed to select activity: %v", err)
	}
	if err := page.Locator("#email").Fill("ada@mergington.edu"); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("#signup-form button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to submit signup: %v", err)
	}

	message := page.Locator("#message")
	if err := expect.Locator(message).ToHaveText("Signed up ada@mergington.edu for Robotics Club"); err != nil {
		t.Fatalf("signup message: %v", err)
	}
	if err := expect.Locator(message).ToHaveClass("success"); err != nil {
		t.Fatalf("signup message class: %v", err)
	}
	if err := expect.Locator(page.Locator("#email")).ToHaveValue(""); err != nil {
		t.Fatalf("signup form was not reset: %v", err)
	}

	participant := page.Locator(".participant-email", playwright.PageLocatorOptions{HasText: "ada@mergington.edu"})
	if err := expect.Locator(participant).ToHaveCount(1); err != nil {
		t.Fatalf("new participant not listed: %v", err)
	}

	// The status message hides itself after five seconds.
	if err := expect.Locator(message).ToBeHidden(playwright.LocatorAssertionsToBeHiddenOptions{
		Timeout: playwright.Float(7000),
	}); err != nil {
		t.Fatalf("status message did not hide: %v", err)
	}

	remove := page.Locator("li", playwright.PageLocatorOptions{HasText: "ada@mergington.edu"}).Locator(".delete-btn")
	if err := remove.Click(); err != nil {
		t.Fatalf("failed to click remove: %v", err)
	}
	if err := expect.Locator(message).ToHaveText("Unregistered ada@mergington.edu from Robotics Club"); err != nil {
		t.Fatalf("unregister message: %v", err)
	}
	if err := expect.Locator(participant).ToHaveCount(0); err != nil {
		t.Fatalf("participant still listed: %v", err)
	}
}

func TestBrowser_FiltersApply(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	h := newHarness(t)
	page := newPage(t)
	expect := playwright.NewPlaywrightAssertions()

	if _, err := page.Goto(h.front.URL); err != nil {
		t.Fatalf("failed to open board: %v", err)
	}

	if _, err := page.Locator("#filter-category").SelectOption(playwright.SelectOptionValues{Values: &[]string{"Sports"}}); err != nil {
		t.Fatalf("failed to select category: %v", err)
	}
	if err := page.Locator("#search-text").Fill("team"); err != nil {
		t.Fatalf("failed to fill search: %v", err)
	}
	if err := page.Locator("#search-text").Press("Enter"); err != nil {
		t.Fatalf("failed to submit filters: %v", err)
	}

	if err := expect.Locator(page.Locator(".activity-card")).ToHaveCount(2); err != nil {
		t.Fatalf("expected Soccer Team and Basketball Team: %v", err)
	}
	if err := expect.Locator(page.Locator("#activity option")).ToHaveCount(3); err != nil {
		t.Fatalf("dropdown should hold the placeholder and two activities: %v", err)
	}
}
