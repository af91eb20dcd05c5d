package catalog

import (
	"context"
	"time"
)

// PricingModel 工具定价模式
type PricingModel string

const (
	PricingFree      PricingModel = "Free"
	PricingFreemium  PricingModel = "Freemium"
	PricingPaid      PricingModel = "Paid"
	PricingFreeTrial PricingModel = "Free Trial"
	PricingContact   PricingModel = "Contact for Pricing"
	PricingDeals     PricingModel = "Active Deal"
)

// Tool 目录中的一个 AI 工具
type Tool struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	WebsiteURL  string       `json:"websiteUrl"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Pricing     PricingModel `json:"pricing"`
	Categories  []string     `json:"categories"`
	Features    []string     `json:"features,omitempty"`
	AddedAt     time.Time    `json:"addedAt"`
	Popular     bool         `json:"popular"`
}

// Source 工具数据源，只用于构造系统指令
type Source interface {
	List(ctx context.Context) ([]Tool, error)
}
