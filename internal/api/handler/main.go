package handler

import (
	"net/http"
	"time"

	"questboard/internal/interfaces"
	"questboard/internal/pkg/logger"
	"questboard/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

const REQUEST_TIMEOUT = 10 * time.Second

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	log, err := do.Invoke[*logger.Logger](cfg.Container)
	if err != nil {
		return nil, err
	}

	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Validator = newRequestValidator()
	r.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				log.Warn("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
				return nil
			}
			log.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	r.Use(middleware.Recover())
	r.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: REQUEST_TIMEOUT,
	}))

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🤖")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		bot, err := do.Invoke[*services.Bot](cfg.Container)
		if err != nil {
			return nil, err
		}
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		store, err := do.Invoke[interfaces.IdempotencyStore](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, HeaderIdempotencyKey},
			ExposeHeaders:    []string{HeaderIdempotencyReplayed},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.GET("/health", Health)

		routesAPIv1.Use(Authn(bot, authentication)) // Authn will NOT terminate unauthenticated request.

		lifecycle := RateLimit(cfg.Container)
		idempotent := Idempotent(store, log)

		u := groupUser{cfg.Container}
		q := groupQuest{cfg.Container}
		a := groupAchievement{cfg.Container}

		routesAPIv1User := routesAPIv1.Group("/user")
		{
			routesAPIv1User.GET("", u.Me)
			routesAPIv1User.POST("", u.Register)
			routesAPIv1User.DELETE("/:telegram_id", u.Delete)
			routesAPIv1User.GET("/quests", q.Mine)
			routesAPIv1User.GET("/achievements", a.Mine)
		}

		routesAPIv1Users := routesAPIv1.Group("/users")
		{
			routesAPIv1Users.GET("", u.List)
			routesAPIv1Users.POST("", u.Create)
			routesAPIv1Users.GET("/:telegram_id", u.Show)
			routesAPIv1Users.PUT("/:telegram_id", u.Replace)
			routesAPIv1Users.PATCH("/:telegram_id", u.Patch)
			routesAPIv1Users.DELETE("/:telegram_id", u.Delete)
		}

		routesAPIv1Quests := routesAPIv1.Group("/quests")
		{
			routesAPIv1Quests.GET("", q.List)
			routesAPIv1Quests.POST("", q.Create)
			routesAPIv1Quests.GET("/:id", q.Show)
			routesAPIv1Quests.PUT("/:id", q.Replace)
			routesAPIv1Quests.PATCH("/:id", q.Patch)
			routesAPIv1Quests.DELETE("/:id", q.Delete)

			routesAPIv1Quests.POST("/:id/accept", q.Accept, lifecycle, idempotent)
			routesAPIv1Quests.POST("/:id/submit", q.Submit, lifecycle)
			routesAPIv1Quests.POST("/:id/request_changes", q.RequestChanges, lifecycle)
			routesAPIv1Quests.POST("/:id/complete", q.Complete, lifecycle)
			routesAPIv1Quests.POST("/:id/unlock", q.Unlock, lifecycle)
			routesAPIv1Quests.POST("/:id/accept_reward", q.AcceptReward, lifecycle, idempotent)

			rw := groupReward{cfg.Container}
			routesAPIv1Quests.GET("/:id/rewards", rw.List)
			routesAPIv1Quests.POST("/:id/rewards", rw.Create)
			routesAPIv1Quests.PATCH("/:id/rewards/:reward_id", rw.Patch)
			routesAPIv1Quests.DELETE("/:id/rewards/:reward_id", rw.Delete)
		}

		routesAPIv1Achievements := routesAPIv1.Group("/achievements")
		{
			routesAPIv1Achievements.GET("", a.List)
			routesAPIv1Achievements.POST("", a.Create)
			routesAPIv1Achievements.POST("/:id/unlock", a.Unlock)
		}

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard", l.Get)
	}

	return r, nil
}

func Health(c echo.Context) error {
	return httpx.RestAbort(c, map[string]string{"status": "ok"}, nil)
}
