package router

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/sholatbot/core/logger"
	tg "github.com/m3rciful/sholatbot/core/telegram"
	"github.com/m3rciful/sholatbot/core/telegram/middleware"
)

// CommandRouteOptions configures admin gating for commands.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered command, each wrapped with
// recover, update logging and a handler summary. AdminOnly commands are gated.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	gate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for _, endpoint := range slices.Sorted(maps.Keys(cmds)) {
		def := cmds[endpoint]
		name := handlerName(endpoint)
		var h tele.HandlerFunc = func(c tele.Context) error {
			return summary{handler: name, start: timeNow()}.run(c, func() error {
				return def.Handler(c)
			})
		}
		if def.AdminOnly {
			h = gate(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: endpoint,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
		})
	}

	logger.Info(context.Background(), "tg.wire", "complete",
		slog.String("status", "ok"),
		slog.Int("commands", len(routes)),
	)
	return routes
}
