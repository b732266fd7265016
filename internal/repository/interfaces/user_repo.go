package interfaces

import (
	"time"

	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
)

// UserRepository 接口定义了用户仓库应该实现的方法
// 密码哈希规则由仓库层保证：只有 Create 和 UpdatePassword 会写哈希字段
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	// FindByVerificationToken 按"令牌摘要 + 未过期"复合条件查找，过期判断在查询时完成
	FindByVerificationToken(userID int, tokenHash string, now time.Time) (*model.User, error)
	FindByResetToken(tokenHash string, now time.Time) (*model.User, error)

	UpdateProfile(user *model.User) error
	UpdateAvatar(userID int, avatarURL string) error
	UpdateRole(userID int, role string) error

	SetVerificationToken(userID int, tokenHash string, expire time.Time) error
	// MarkEmailVerified 置位验证标记并同时清除令牌摘要与过期时间
	MarkEmailVerified(userID int) error
	SetResetToken(userID int, tokenHash string, expire time.Time) error
	// UpdatePassword 重新哈希密码并同时清除重置令牌字段
	UpdatePassword(userID int, plainPassword string, changedAt time.Time) error

	Count() (int, error)
	FindAll(page, pageSize int) ([]*model.User, error)

	CreateAddress(address *model.Address) error
	UpdateAddress(address *model.Address) error
	DeleteAddress(id, userID int) error
	GetAddressByID(id int) (*model.Address, error)
	ListUserAddresses(userID int) ([]*model.Address, error)
	SetDefaultAddress(userID, addressID int) error
}
