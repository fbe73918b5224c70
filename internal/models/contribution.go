package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contribution 表示一笔认捐记录
// Name 是创建时贡献者名字的冗余快照，展示时是否匿名由 IsAnonymous 决定
type Contribution struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Note          string          `gorm:"size:255" json:"note,omitempty"`
	IsAnonymous   bool            `gorm:"default:false" json:"isAnonymous"`
	IsRepayable   bool            `gorm:"default:false" json:"isRepayable"` // 需要偿还（借款）还是赠与
	Confirmed     bool            `gorm:"default:false;index" json:"confirmed"`
	Name          string          `gorm:"size:64" json:"name"`
	ContributorID *uint           `gorm:"index" json:"contributor"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"-"`
}
