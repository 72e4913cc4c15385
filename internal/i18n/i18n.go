package i18n

import (
	"fmt"
	"strings"

	"github.com/nhorsopheak/promotion-management/internal/constants"

	"github.com/gin-gonic/gin"
)

const defaultLocale = constants.LocaleZhCN

var catalogs = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request":              "请求参数错误",
		"error.unauthorized":             "未登录或登录已过期",
		"error.forbidden":                "没有权限执行该操作",
		"error.not_found":                "资源不存在",
		"error.internal":                 "服务器内部错误",
		"error.too_many_requests":        "请求过于频繁",
		"error.jwt_secret_missing":       "服务端签名密钥未配置",
		"error.auth_header_missing":      "缺少认证信息",
		"error.auth_header_invalid":      "认证信息格式错误",
		"error.token_invalid":            "登录凭证无效",
		"error.token_revoked":            "登录凭证已失效，请重新登录",
		"error.rate_limit_unavailable":   "限流服务暂不可用",
		"error.rate_limited":             "操作过于频繁，请 %d 秒后重试",
		"error.login_too_many":           "登录尝试过多，请 %d 秒后再试",
		"error.invalid_credentials":      "用户名或密码错误",
		"error.invalid_password":         "密码不符合安全要求",
		"error.old_password_incorrect":   "原密码错误",
		"error.admin_id_invalid":         "管理员标识无效",
		"error.admin_id_type_invalid":    "管理员标识类型错误",
		"error.promotion_not_found":      "促销活动不存在",
		"error.promotion_invalid":        "促销活动配置无效",
		"error.promotion_code_exists":    "促销编码已存在",
		"error.promotion_status_invalid": "促销状态流转不合法",
		"error.category_not_found":       "分类不存在",
		"error.category_slug_exists":     "分类标识已存在",
		"error.product_not_found":        "商品不存在",
		"error.product_sku_exists":       "商品 SKU 已存在",
		"error.product_not_available":    "商品不可售",
		"error.insufficient_stock":       "商品库存不足",
		"error.customer_not_found":       "客户不存在",
		"error.customer_email_exists":    "客户邮箱已存在",
		"error.cart_empty":               "购物车为空",
		"error.order_not_found":          "订单不存在",

		"error.admin_login_invalid":        "用户名或密码错误",
		"error.login_failed":               "登录失败，请稍后重试",
		"error.user_not_found":             "用户不存在",
		"error.password_old_invalid":       "原密码错误",
		"error.password_weak":              "密码强度不足",
		"error.password_min_length":        "密码长度不能少于 %d 位",
		"error.password_require_upper":     "密码必须包含大写字母",
		"error.password_require_lower":     "密码必须包含小写字母",
		"error.password_require_number":    "密码必须包含数字",
		"error.password_require_special":   "密码必须包含特殊字符",
		"error.save_failed":                "保存失败",
		"error.config_fetch_failed":        "获取配置失败",
		"error.admin_create_failed":        "创建管理员失败",
		"error.admin_update_failed":        "更新管理员失败",
		"error.admin_delete_failed":        "删除管理员失败",
		"error.admin_delete_last_forbidden": "至少需要保留一个管理员",
		"error.admin_delete_protected":     "该管理员受保护，不可删除",
		"error.admin_delete_self_forbidden": "不能删除当前登录的管理员",
		"error.admin_username_exists":      "管理员用户名已存在",
		"error.admin_username_invalid":     "管理员用户名不合法",
		"error.product_fetch_failed":       "获取商品失败",
		"error.product_create_failed":      "创建商品失败",
		"error.product_update_failed":      "更新商品失败",
		"error.product_delete_failed":      "删除商品失败",
		"error.category_fetch_failed":      "获取分类失败",
		"error.category_create_failed":     "创建分类失败",
		"error.category_update_failed":     "更新分类失败",
		"error.category_delete_failed":     "删除分类失败",
		"error.promotion_fetch_failed":     "获取促销活动失败",
		"error.promotion_create_failed":    "创建促销活动失败",
		"error.promotion_update_failed":    "更新促销活动失败",
		"error.promotion_delete_failed":    "删除促销活动失败",
		"error.customer_fetch_failed":      "获取客户失败",
		"error.customer_create_failed":     "创建客户失败",
		"error.customer_update_failed":     "更新客户失败",
		"error.customer_delete_failed":     "删除客户失败",
		"error.order_fetch_failed":         "获取订单失败",
		"error.dashboard_fetch_failed":     "获取仪表盘数据失败",
		"error.cart_fetch_failed":          "获取购物车失败",
		"error.cart_save_failed":           "保存购物车失败",
		"error.preview_failed":             "促销试算失败",
		"error.checkout_failed":            "结账失败",
	},
	constants.LocaleEnUS: {
		"error.bad_request":              "invalid request parameters",
		"error.unauthorized":             "unauthorized or session expired",
		"error.forbidden":                "permission denied",
		"error.not_found":                "resource not found",
		"error.internal":                 "internal server error",
		"error.too_many_requests":        "too many requests",
		"error.jwt_secret_missing":       "server signing key is not configured",
		"error.auth_header_missing":      "authorization header is missing",
		"error.auth_header_invalid":      "authorization header is malformed",
		"error.token_invalid":            "invalid credential",
		"error.token_revoked":            "credential revoked, please login again",
		"error.rate_limit_unavailable":   "rate limiter unavailable",
		"error.rate_limited":             "too many attempts, retry in %d seconds",
		"error.login_too_many":           "too many login attempts, retry in %d seconds",
		"error.invalid_credentials":      "invalid username or password",
		"error.invalid_password":         "password does not meet the policy",
		"error.old_password_incorrect":   "old password is incorrect",
		"error.admin_id_invalid":         "invalid admin identity",
		"error.admin_id_type_invalid":    "invalid admin identity type",
		"error.promotion_not_found":      "promotion not found",
		"error.promotion_invalid":        "promotion configuration is invalid",
		"error.promotion_code_exists":    "promotion code already exists",
		"error.promotion_status_invalid": "promotion status transition is not allowed",
		"error.category_not_found":       "category not found",
		"error.category_slug_exists":     "category slug already exists",
		"error.product_not_found":        "product not found",
		"error.product_sku_exists":       "product sku already exists",
		"error.product_not_available":    "product is not available",
		"error.insufficient_stock":       "insufficient stock",
		"error.customer_not_found":       "customer not found",
		"error.customer_email_exists":    "customer email already exists",
		"error.cart_empty":               "cart is empty",
		"error.order_not_found":          "order not found",

		"error.admin_login_invalid":        "invalid username or password",
		"error.login_failed":               "login failed, please try again later",
		"error.user_not_found":             "user not found",
		"error.password_old_invalid":       "old password is incorrect",
		"error.password_weak":              "password is too weak",
		"error.password_min_length":        "password must be at least %d characters",
		"error.password_require_upper":     "password must contain an uppercase letter",
		"error.password_require_lower":     "password must contain a lowercase letter",
		"error.password_require_number":    "password must contain a digit",
		"error.password_require_special":   "password must contain a special character",
		"error.save_failed":                "failed to save",
		"error.config_fetch_failed":        "failed to fetch configuration",
		"error.admin_create_failed":        "failed to create admin",
		"error.admin_update_failed":        "failed to update admin",
		"error.admin_delete_failed":        "failed to delete admin",
		"error.admin_delete_last_forbidden": "at least one admin must remain",
		"error.admin_delete_protected":     "this admin is protected and cannot be deleted",
		"error.admin_delete_self_forbidden": "cannot delete the currently logged in admin",
		"error.admin_username_exists":      "admin username already exists",
		"error.admin_username_invalid":     "admin username is invalid",
		"error.product_fetch_failed":       "failed to fetch products",
		"error.product_create_failed":      "failed to create product",
		"error.product_update_failed":      "failed to update product",
		"error.product_delete_failed":      "failed to delete product",
		"error.category_fetch_failed":      "failed to fetch categories",
		"error.category_create_failed":     "failed to create category",
		"error.category_update_failed":     "failed to update category",
		"error.category_delete_failed":     "failed to delete category",
		"error.promotion_fetch_failed":     "failed to fetch promotions",
		"error.promotion_create_failed":    "failed to create promotion",
		"error.promotion_update_failed":    "failed to update promotion",
		"error.promotion_delete_failed":    "failed to delete promotion",
		"error.customer_fetch_failed":      "failed to fetch customers",
		"error.customer_create_failed":     "failed to create customer",
		"error.customer_update_failed":     "failed to update customer",
		"error.customer_delete_failed":     "failed to delete customer",
		"error.order_fetch_failed":         "failed to fetch orders",
		"error.dashboard_fetch_failed":     "failed to fetch dashboard data",
		"error.cart_fetch_failed":          "failed to fetch cart",
		"error.cart_save_failed":           "failed to save cart",
		"error.preview_failed":             "failed to preview promotions",
		"error.checkout_failed":            "failed to checkout",
	},
}

// ResolveLocale 解析请求语言，优先级：query lang > Accept-Language > 默认
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	if lang := normalizeLocale(c.Query("lang")); lang != "" {
		return lang
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		if idx := strings.Index(part, ";"); idx >= 0 {
			part = part[:idx]
		}
		if lang := normalizeLocale(part); lang != "" {
			return lang
		}
	}
	return defaultLocale
}

func normalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, locale := range constants.SupportedLocales {
		if strings.EqualFold(raw, locale) {
			return locale
		}
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "zh"):
		return constants.LocaleZhCN
	case strings.HasPrefix(lower, "en"):
		return constants.LocaleEnUS
	}
	return ""
}

// T 按语言返回文案，缺失时回退默认语言，再回退 key 本身
func T(locale, key string) string {
	if catalog, ok := catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[defaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 按语言格式化文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
