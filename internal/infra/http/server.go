package http

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/compose"
	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/infra/cachemem"
	"inkwell/internal/infra/db"
	"inkwell/internal/infra/notify"
	"inkwell/internal/infra/objstore"
	"inkwell/internal/infra/ratelimit"
	"inkwell/internal/usecase"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	createUC  *usecase.CreateRequest
	replaceUC *usecase.ReplaceFields
	sendUC    *usecase.SendRequest
	hydrateUC *usecase.HydrateSigner
	fillUC    *usecase.FillField
	submitUC  *usecase.SubmitRequest
	emailUC   *usecase.EmailDocument

	objects  usecase.ObjectStore
	composer *compose.Composer
	pageDims *cachemem.Cache

	adminAPIKey string

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

// ServerDeps lets tests assemble a server from fakes without touching
// postgres, redis, or a real object store.
type ServerDeps struct {
	Create      *usecase.CreateRequest
	Replace     *usecase.ReplaceFields
	Send        *usecase.SendRequest
	Hydrate     *usecase.HydrateSigner
	Fill        *usecase.FillField
	Submit      *usecase.SubmitRequest
	Email       *usecase.EmailDocument
	Objects     usecase.ObjectStore
	AdminAPIKey string
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:         cfg,
		r:           r,
		createUC:    deps.Create,
		replaceUC:   deps.Replace,
		sendUC:      deps.Send,
		hydrateUC:   deps.Hydrate,
		fillUC:      deps.Fill,
		submitUC:    deps.Submit,
		emailUC:     deps.Email,
		objects:     deps.Objects,
		composer:    compose.NewComposer(),
		pageDims:    cachemem.New(),
		adminAPIKey: deps.AdminAPIKey,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	s.adminAPIKey = s.cfg.AdminAPIKey
	s.composer = compose.NewComposer()
	s.pageDims = cachemem.New()
	s.objects = buildObjectStore(s.cfg)

	var notifier usecase.Notifier
	if s.cfg.MailWebhookURL != "" {
		if mailer, err := notify.NewWebhookMailer(s.cfg.MailWebhookURL); err == nil {
			notifier = mailer
		}
	}

	var (
		requestRepo *db.RequestRepository
		fieldRepo   *db.FieldRepository
		imageRepo   *db.ImageRepository
		auditRepo   *db.AuditEventRepository
	)
	if s.store != nil && s.store.DB != nil {
		requestRepo = db.NewRequestRepository(s.store.DB)
		fieldRepo = db.NewFieldRepository(s.store.DB)
		imageRepo = db.NewImageRepository(s.store.DB)
		auditRepo = db.NewAuditEventRepository(s.store.DB)
	}

	var audit *usecase.AuditEmitter
	if auditRepo != nil {
		audit = usecase.NewAuditEmitter(auditRepo, nil)
	}

	if requestRepo == nil {
		// No database: the admin/signer API stays up for health checks but
		// every data operation reports not found.
		s.initRateLimit(nil)
		return
	}

	hydrate := &usecase.HydrateSigner{
		Requests: requestRepo,
		Fields:   fieldRepo,
		Images:   imageRepo,
	}
	s.hydrateUC = hydrate
	s.createUC = &usecase.CreateRequest{
		Requests: requestRepo,
		Fields:   fieldRepo,
		Objects:  s.objects,
		Audit:    audit,
	}
	s.replaceUC = &usecase.ReplaceFields{
		Requests: requestRepo,
		Fields:   fieldRepo,
		Audit:    audit,
	}
	s.sendUC = &usecase.SendRequest{
		Requests: requestRepo,
		Fields:   fieldRepo,
		Notify:   notifier,
		Audit:    audit,
	}
	s.fillUC = &usecase.FillField{
		Hydrate:  hydrate,
		Requests: requestRepo,
		Images:   imageRepo,
		Objects:  s.objects,
		Composer: s.composer,
		Audit:    audit,
	}
	s.submitUC = &usecase.SubmitRequest{
		Hydrate:  hydrate,
		Requests: requestRepo,
		Objects:  s.objects,
		Composer: s.composer,
		Audit:    audit,
	}
	if notifier != nil {
		s.emailUC = &usecase.EmailDocument{
			Requests: requestRepo,
			Notify:   notifier,
			Audit:    audit,
		}
	}

	s.initRateLimit(nil)
}

func buildObjectStore(cfg config.Config) usecase.ObjectStore {
	if cfg.S3Bucket != "" {
		if store, err := objstore.NewS3StoreFromConfig(cfg); err == nil {
			return store
		} else {
			log.Printf("s3 object store unavailable: %v", err)
		}
	}
	if cfg.ObjectStoreDir != "" {
		if store, err := objstore.NewFSStore(cfg.ObjectStoreDir); err == nil {
			return store
		} else {
			log.Printf("fs object store unavailable: %v", err)
		}
	}
	log.Printf("no object store configured; using in-memory store")
	return objstore.NewMemStore()
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(s.cfg.RateLimitMaxKeys, nil)
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = s.cfg.RateLimitWindow()
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(200, gin.H{"status": "ok", "mode": dbMode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/requests", s.handleAdminCreateRequest)
		v1.GET("/requests/:request_id", s.handleAdminGetRequest)
		v1.PUT("/requests/:request_id/fields", s.handleAdminReplaceFields)
		v1.POST("/requests/:request_id/send", s.handleAdminSendRequest)
		v1.POST("/requests/:request_id/email", s.handleAdminEmailDocument)

		sign := v1.Group("/sign", s.signerRateLimit())
		{
			sign.GET("/:token", s.handleSignerView)
			sign.POST("/:token/fields/:field_id", s.handleSignerFillField)
			sign.POST("/:token/submit", s.handleSignerSubmit)
			sign.GET("/:token/document", s.handleSignerDocument)
		}
	}

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) signerRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
			c.Next()
			return
		}
		key := "sign:" + c.Param("token") + ":" + c.ClientIP()
		decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
		if err != nil {
			// Fail open: a limiter outage should not take signing down.
			c.Next()
			return
		}
		if !decision.Allowed {
			writeErrorCode(c, 429, "RATE_LIMITED", "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
