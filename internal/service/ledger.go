package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/David-Jacks/faitherpa/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 业务错误，由 handler 映射为 HTTP 状态码
var (
	ErrAmountRequired = errors.New("amount required")
	ErrNameRequired   = errors.New("name required")
	ErrNotFound       = errors.New("contribution not found")
	ErrDeleteFailed   = errors.New("delete failed")
)

// Ledger orchestrates contributor identity resolution and the contribution
// lifecycle. It owns the invariant that every contribution with a non-nil
// ContributorID points at an existing user, so every cross-record change
// goes through a transaction.
type Ledger struct {
	DB         *gorm.DB
	BcryptCost int
	ListLimit  int
}

func NewLedger(db *gorm.DB, bcryptCost, listLimit int) *Ledger {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if listLimit <= 0 {
		listLimit = 200
	}
	return &Ledger{DB: db, BcryptCost: bcryptCost, ListLimit: listLimit}
}

// ---------- 身份解析 ----------

// ContributorInput carries the optional identity fields of a pledge request.
type ContributorInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string
}

func (l *Ledger) hashPassword(password string) (*string, error) {
	if password == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	s := string(hash)
	return &s, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ResolveOrCreateContributor 按邮箱或手机号取已有用户，不存在则插入。
// 查找和插入在同一条 FirstOrCreate 里完成，调用方需把它放进事务，
// 避免两个相同邮箱的并发请求各建一个用户。密码哈希只在插入时写入。
func (l *Ledger) ResolveOrCreateContributor(tx *gorm.DB, in ContributorInput) (*models.User, error) {
	hash, err := l.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var user models.User
	if in.Email != "" || in.PhoneNumber != "" {
		q := tx.Model(&models.User{})
		if in.Email != "" {
			q = q.Where("email = ?", in.Email)
		} else {
			q = q.Where("phone_number = ?", in.PhoneNumber)
		}
		attrs := models.User{
			Name:         in.Name,
			Email:        strPtr(in.Email),
			PhoneNumber:  strPtr(in.PhoneNumber),
			PasswordHash: hash,
		}
		if err := q.Attrs(attrs).FirstOrCreate(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	// 没有邮箱/手机号：总是新建（名字不唯一）
	user = models.User{Name: in.Name, PasswordHash: hash}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ---------- 创建认捐 ----------

type CreateContributionInput struct {
	Amount      *decimal.Decimal
	IsAnonymous bool
	IsRepayable bool
	Note        string
	Name        string
	Email       string
	PhoneNumber string
	Password    string
}

// CreateContribution resolves the contributor and inserts the contribution
// in one transaction. If the transaction fails (e.g. a write conflict) it
// falls back to a best-effort sequential path rather than refusing the
// pledge. The stored Name is always the resolved contributor's name;
// anonymity is applied at display time only.
func (l *Ledger) CreateContribution(ctx context.Context, in CreateContributionInput) (*models.User, *models.Contribution, error) {
	if in.Amount == nil {
		return nil, nil, ErrAmountRequired
	}
	if !in.IsAnonymous && in.Name == "" {
		return nil, nil, ErrNameRequired
	}

	identity := ContributorInput{
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Password:    in.Password,
	}
	linked := in.Email != "" || in.PhoneNumber != ""

	newContribution := func(u *models.User) models.Contribution {
		c := models.Contribution{
			Amount:      *in.Amount,
			Note:        in.Note,
			IsAnonymous: in.IsAnonymous,
			IsRepayable: in.IsRepayable,
			Name:        u.Name,
		}
		if linked {
			c.ContributorID = &u.ID
		}
		return c
	}

	var user models.User
	var contrib models.Contribution
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := l.ResolveOrCreateContributor(tx, identity)
		if err != nil {
			return err
		}
		user = *u
		contrib = newContribution(u)
		return tx.Create(&contrib).Error
	})
	if err == nil {
		return &user, &contrib, nil
	}

	// 事务失败：退化为先查后建的顺序路径
	u, err := l.sequentialResolve(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	contrib = newContribution(u)
	if err := l.DB.WithContext(ctx).Create(&contrib).Error; err != nil {
		return nil, nil, err
	}
	return u, &contrib, nil
}

// sequentialResolve 是 CreateContribution 的兜底路径：普通查找，找不到再插入。
// 插入撞了唯一索引（并发的相同身份提交）就再查一次。
func (l *Ledger) sequentialResolve(ctx context.Context, in ContributorInput) (*models.User, error) {
	lookup := func() (*models.User, error) {
		if in.Email == "" && in.PhoneNumber == "" {
			return nil, gorm.ErrRecordNotFound
		}
		q := l.DB.WithContext(ctx).Model(&models.User{})
		switch {
		case in.Email != "" && in.PhoneNumber != "":
			q = q.Where("email = ? OR phone_number = ?", in.Email, in.PhoneNumber)
		case in.Email != "":
			q = q.Where("email = ?", in.Email)
		default:
			q = q.Where("phone_number = ?", in.PhoneNumber)
		}
		var u models.User
		if err := q.First(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}

	if u, err := lookup(); err == nil {
		return u, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := l.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:         in.Name,
		Email:        strPtr(in.Email),
		PhoneNumber:  strPtr(in.PhoneNumber),
		PasswordHash: hash,
	}
	if err := l.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if u, lerr := lookup(); lerr == nil {
			return u, nil
		}
		return nil, err
	}
	return &user, nil
}

// ---------- 查询 ----------

// ContributionView is a contribution plus its computed display name.
type ContributionView struct {
	models.Contribution
	DisplayName string `json:"displayName"`
}

// ListContributions 按时间倒序返回最近的认捐，上限 ListLimit 条。
func (l *Ledger) ListContributions(ctx context.Context) ([]ContributionView, error) {
	var contributions []models.Contribution
	if err := l.DB.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(l.ListLimit).
		Find(&contributions).Error; err != nil {
		return nil, err
	}

	views := make([]ContributionView, 0, len(contributions))
	for _, c := range contributions {
		views = append(views, ContributionView{
			Contribution: c,
			DisplayName:  displayName(c.IsAnonymous, c.Name),
		})
	}
	return views, nil
}

func displayName(anonymous bool, name string) string {
	if anonymous {
		return "Anonymous"
	}
	return name
}

// Total 汇总所有认捐金额，已确认和未确认都算（进度展示，不是到账金额）。
func (l *Ledger) Total(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := l.DB.WithContext(ctx).
		Model(&models.Contribution{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// ContributionSummary is the per-contribution row inside a contributor
// aggregate. Note is filled only for privileged readers.
type ContributionSummary struct {
	ID          uint            `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note,omitempty"`
	IsAnonymous bool            `json:"isAnonymous"`
	IsRepayable bool            `json:"isRepayable"`
	Confirmed   bool            `json:"confirmed"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type ContributorAggregate struct {
	ID            uint                  `json:"id"`
	Name          string                `json:"name"`
	Email         *string               `json:"email,omitempty"`
	Total         decimal.Decimal       `json:"total"`
	Count         int                   `json:"count"`
	AnonCount     int                   `json:"anonCount"`
	DisplayName   string                `json:"displayName"`
	Contributions []ContributionSummary `json:"contributions"`
}

// Contributors groups contributions by contributor (unlinked contributions
// are excluded) and joins the identities in a second query. A contributor
// shows as "Anonymous" only when every one of their contributions is
// anonymous.
func (l *Ledger) Contributors(ctx context.Context, includeNotes bool) ([]ContributorAggregate, error) {
	var contributions []models.Contribution
	if err := l.DB.WithContext(ctx).
		Where("contributor_id IS NOT NULL").
		Order("created_at ASC, id ASC").
		Find(&contributions).Error; err != nil {
		return nil, err
	}

	// 按出现顺序分组
	grouped := make(map[uint]*ContributorAggregate)
	order := make([]uint, 0)
	for _, c := range contributions {
		id := *c.ContributorID
		agg, ok := grouped[id]
		if !ok {
			agg = &ContributorAggregate{ID: id, Total: decimal.Zero}
			grouped[id] = agg
			order = append(order, id)
		}
		agg.Total = agg.Total.Add(c.Amount)
		agg.Count++
		if c.IsAnonymous {
			agg.AnonCount++
		}
		summary := ContributionSummary{
			ID:          c.ID,
			Amount:      c.Amount,
			IsAnonymous: c.IsAnonymous,
			IsRepayable: c.IsRepayable,
			Confirmed:   c.Confirmed,
			CreatedAt:   c.CreatedAt,
		}
		if includeNotes {
			summary.Note = c.Note
		}
		agg.Contributions = append(agg.Contributions, summary)
	}

	var users []models.User
	if len(order) > 0 {
		if err := l.DB.WithContext(ctx).Where("id IN ?", order).Find(&users).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	result := make([]ContributorAggregate, 0, len(order))
	for _, id := range order {
		u, ok := byID[id]
		if !ok {
			continue // 悬空引用不应出现，出现了也不让它弄崩列表
		}
		agg := grouped[id]
		agg.Name = u.Name
		agg.Email = u.Email
		if agg.AnonCount == agg.Count {
			agg.DisplayName = "Anonymous"
		} else {
			agg.DisplayName = u.Name
		}
		result = append(result, *agg)
	}
	return result, nil
}

// ---------- 确认 ----------

// Confirm marks one contribution as confirmed. Confirming an already
// confirmed contribution is a no-op success.
func (l *Ledger) Confirm(ctx context.Context, id uint) (*models.Contribution, error) {
	var contrib models.Contribution
	if err := l.DB.WithContext(ctx).First(&contrib, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	contrib.Confirmed = true
	if err := l.DB.WithContext(ctx).Save(&contrib).Error; err != nil {
		return nil, err
	}
	return &contrib, nil
}

// ConfirmAllFor confirms every not-yet-confirmed contribution of one
// contributor and returns the number actually changed. Zero is not an error.
func (l *Ledger) ConfirmAllFor(ctx context.Context, contributorID uint) (int64, error) {
	res := l.DB.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("contributor_id = ? AND confirmed = ?", contributorID, false).
		Update("confirmed", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// HasConfirmed 判断该用户是否至少有一笔已确认的认捐。
func (l *Ledger) HasConfirmed(ctx context.Context, contributorID uint) (bool, error) {
	var count int64
	err := l.DB.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("contributor_id = ? AND confirmed = ?", contributorID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ---------- 级联删除 ----------

// DeleteCascade deletes one contribution; when it is linked to a
// contributor the contributor and all their other contributions go with it,
// in a single transaction. There is no fallback path here: a partial delete
// would leave dangling references, so any failure rolls everything back.
func (l *Ledger) DeleteCascade(ctx context.Context, id uint) error {
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contrib models.Contribution
		if err := tx.First(&contrib, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&models.Contribution{}, contrib.ID).Error; err != nil {
			return err
		}
		if contrib.ContributorID != nil {
			contributorID := *contrib.ContributorID
			if err := tx.Where("contributor_id = ?", contributorID).
				Delete(&models.Contribution{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.User{}, contributorID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
}
