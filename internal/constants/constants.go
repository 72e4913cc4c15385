package constants

// 促销类型常量
const (
	PromotionTypeBuyXGetYFree     = "buy_x_get_y_free"
	PromotionTypeStepDiscount     = "step_discount"
	PromotionTypeFixedPriceBundle = "fixed_price_bundle"
	PromotionTypePercentage       = "percentage_discount"
)

// 促销状态常量
const (
	PromotionStatusDraft     = "draft"
	PromotionStatusScheduled = "scheduled"
	PromotionStatusActive    = "active"
	PromotionStatusPaused    = "paused"
	PromotionStatusExpired   = "expired"
	PromotionStatusCancelled = "cancelled"
)

// 促销适用范围常量
const (
	ApplyToAny                = "any"
	ApplyToAll                = "all"
	ApplyToSpecificProducts   = "specific_products"
	ApplyToSpecificCategories = "specific_categories"
)

// 买赠促销赠品选取方式常量
const (
	GetTypeCheapest         = "cheapest"
	GetTypeSpecificProducts = "specific_products"
)

// 百分比促销折扣类型常量
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
)

// 促销日志动作常量
const (
	PromotionLogActionApplied  = "applied"
	PromotionLogActionFailed   = "failed"
	PromotionLogActionReverted = "reverted"
)

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
	OrderStatusRefunded  = "refunded"
)

// 支付状态常量
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// 收款方式常量（POS 仅记录，不对接网关）
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// 会员等级常量
const (
	MembershipTierSilver   = "silver"
	MembershipTierGold     = "gold"
	MembershipTierPlatinum = "platinum"
)

// 客户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 商品库存状态常量
const (
	ProductStockStatusInStock    = "in_stock"
	ProductStockStatusLowStock   = "low_stock"
	ProductStockStatusOutOfStock = "out_of_stock"
)

// 库存低位阈值
const (
	ProductLowStockThreshold = 5
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskPromotionUsageLog = "promotion:usage_log"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "pm"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleEnUS}

// PromotionTypes 全部促销类型
var PromotionTypes = []string{
	PromotionTypeBuyXGetYFree,
	PromotionTypeStepDiscount,
	PromotionTypeFixedPriceBundle,
	PromotionTypePercentage,
}

// PromotionStatuses 全部促销状态
var PromotionStatuses = []string{
	PromotionStatusDraft,
	PromotionStatusScheduled,
	PromotionStatusActive,
	PromotionStatusPaused,
	PromotionStatusExpired,
	PromotionStatusCancelled,
}

// MembershipTiers 全部会员等级
var MembershipTiers = []string{
	MembershipTierSilver,
	MembershipTierGold,
	MembershipTierPlatinum,
}
