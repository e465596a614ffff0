package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/hopespring/backoffice/internal/client/api"
	"github.com/hopespring/backoffice/internal/client/guard"
	"github.com/hopespring/backoffice/internal/client/models"
)

// screen describes one guarded admin surface. A nil role list means any
// authenticated identity passes; role restriction is opt-in per screen.
type screen struct {
	title    string
	resource api.Resource
	roles    []models.Role
}

var screens = map[string]screen{
	"dashboard":     {title: "Dashboard"},
	"contacts":      {title: "Contact messages", resource: api.ResourceContacts},
	"events":        {title: "Events", resource: api.ResourceEvents},
	"gallery":       {title: "Gallery", resource: api.ResourceGallery},
	"blogs":         {title: "Blog posts", resource: api.ResourceBlogs},
	"media":         {title: "Media", resource: api.ResourceMedia},
	"ideas":         {title: "Ideas", resource: api.ResourceIdeas},
	"subscriptions": {title: "Subscriptions", resource: api.ResourceSubscriptions, roles: []models.Role{models.RoleAdmin}},
}

func screenNames() []string {
	names := make([]string, 0, len(screens))
	for name := range screens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open evaluates the route guard for the named screen and either renders
// it, shows the loading placeholder, or sends the user to the login form.
// The redirect is silent: being logged out is expected, not an error.
func (a *App) Open(ctx context.Context, name string) error {
	sc, ok := screens[name]
	if !ok {
		printlnFn("Unknown screen:", name)
		return nil
	}

	switch a.guard.Check(sc.roles...) {
	case guard.ShowLoading:
		printlnFn("Loading session...")
		return nil
	case guard.RedirectLogin:
		printlnFn("Please log in to continue.")
		return a.Login(ctx)
	}
	return a.render(ctx, sc)
}

// Remove deletes one record behind the same guard as Open.
func (a *App) Remove(ctx context.Context, name, id string) error {
	sc, ok := screens[name]
	if !ok || sc.resource == "" {
		printlnFn("Unknown screen:", name)
		return nil
	}

	switch a.guard.Check(sc.roles...) {
	case guard.ShowLoading:
		printlnFn("Loading session...")
		return nil
	case guard.RedirectLogin:
		printlnFn("Please log in to continue.")
		return a.Login(ctx)
	}

	if err := a.api.Delete(ctx, sc.resource, id); err != nil {
		printlnFn("Delete failed:", err.Error())
		return err
	}
	printlnFn("Deleted", id, "from", name+".")
	return nil
}

func (a *App) render(ctx context.Context, sc screen) error {
	if sc.resource == "" {
		return a.renderDashboard(ctx)
	}

	items, err := a.api.List(ctx, sc.resource)
	if err != nil {
		printlnFn("Cannot load "+sc.title+":", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("%s — %d record(s)", sc.title, len(items)))
	for _, item := range items {
		printlnFn("  - " + summarize(item))
	}
	return nil
}

// renderDashboard prints per-collection record counts. A failing collection
// is reported inline and does not break the rest of the board.
func (a *App) renderDashboard(ctx context.Context) error {
	printlnFn("Dashboard")
	for _, res := range []api.Resource{
		api.ResourceContacts, api.ResourceEvents, api.ResourceGallery,
		api.ResourceBlogs, api.ResourceMedia, api.ResourceIdeas,
	} {
		items, err := a.api.List(ctx, res)
		if err != nil {
			printlnFn(fmt.Sprintf("  %-14s unavailable (%s)", res, err.Error()))
			continue
		}
		printlnFn(fmt.Sprintf("  %-14s %d", res, len(items)))
	}
	return nil
}

// summarize picks a human-readable line out of a schemaless record.
func summarize(item map[string]any) string {
	id, _ := item["id"].(string)
	if id == "" {
		id, _ = item["_id"].(string)
	}
	for _, key := range []string{"title", "name", "email", "subject"} {
		if v, ok := item[key].(string); ok && v != "" {
			if id != "" {
				return fmt.Sprintf("%s (%s)", v, id)
			}
			return v
		}
	}
	if id != "" {
		return id
	}
	return fmt.Sprintf("%v", item)
}
