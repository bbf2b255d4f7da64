package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleZH      = "zh-CN"
	LocaleEN      = "en-US"
	DefaultLocale = LocaleZH
)

var catalogs = map[string]map[string]string{
	LocaleZH: zhCN,
	LocaleEN: enUS,
}

// T 查找文案；缺失时依次回退到默认语言与 key 本身
func T(locale, key string) string {
	if msg, ok := catalogs[NormalizeLocale(locale)][key]; ok {
		return msg
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 按模板格式化文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// PromoResultMessage 优惠计算结果提示：生效时返回通用文案，否则按拒绝原因返回
func PromoResultMessage(locale string, applied bool, reason string) string {
	if applied {
		return T(locale, "promo.applied")
	}
	return T(locale, "promo.reason."+strings.TrimSpace(reason))
}

// ResolveLocale 解析请求语言：?lang= 优先，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" || tag == "*" {
			continue
		}
		return NormalizeLocale(tag)
	}
	return DefaultLocale
}

// NormalizeLocale 归一化语言标签，不支持的语言回退默认
func NormalizeLocale(raw string) string {
	lower := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", "-"))
	switch {
	case lower == "":
		return DefaultLocale
	case strings.HasPrefix(lower, "zh"):
		return LocaleZH
	case strings.HasPrefix(lower, "en"):
		return LocaleEN
	default:
		return DefaultLocale
	}
}
