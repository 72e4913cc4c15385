package provider

import (
	"github.com/nhorsopheak/promotion-management/internal/authz"
	"github.com/nhorsopheak/promotion-management/internal/cache"
	"github.com/nhorsopheak/promotion-management/internal/config"
	"github.com/nhorsopheak/promotion-management/internal/logger"
	"github.com/nhorsopheak/promotion-management/internal/models"
	"github.com/nhorsopheak/promotion-management/internal/promotion"
	"github.com/nhorsopheak/promotion-management/internal/queue"
	"github.com/nhorsopheak/promotion-management/internal/repository"
	"github.com/nhorsopheak/promotion-management/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	UserRepo          repository.UserRepository
	OrderRepo         repository.OrderRepository
	ProductRepo       repository.ProductRepository
	CartRepo          repository.CartRepository
	PromotionRepo     repository.PromotionRepository
	PromotionLogRepo  repository.PromotionLogRepository
	CategoryRepo      repository.CategoryRepository
	AuthzAuditLogRepo repository.AuthzAuditLogRepository
	DashboardRepo     repository.DashboardRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	ProductService        *service.ProductService
	CategoryService       *service.CategoryService
	CustomerService       *service.CustomerService
	CartService           *service.CartService
	OrderService          *service.OrderService
	PromotionService      *service.PromotionService
	PromotionAdminService *service.PromotionAdminService
	AuthzAuditService     *service.AuthzAuditService
	DashboardService      *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.PromotionLogRepo = repository.NewPromotionLogRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	engine := promotion.NewEngine(nil)

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.CustomerService = service.NewCustomerService(c.UserRepo)
	c.PromotionService = service.NewPromotionService(c.PromotionRepo, c.PromotionLogRepo, c.UserRepo, engine)
	c.PromotionAdminService = service.NewPromotionAdminService(c.PromotionRepo, c.PromotionLogRepo, c.PromotionService)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.PromotionService)
	c.OrderService = service.NewOrderService(models.DB, c.OrderRepo, c.ProductRepo, c.CartRepo, c.UserRepo, c.CartService, c.PromotionService, c.QueueClient)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.PromotionLogRepo, c.PromotionRepo)
}
