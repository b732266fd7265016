package mysql

import (
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MySQL 错误码
const (
	erDupEntry        = 1062 // 唯一键冲突
	erRowIsReferenced = 1451 // 外键约束：行仍被引用
)

// userRepository 实现了 UserRepository 接口
// 密码只在 Create 和 UpdatePassword 两个写入口被哈希，其余更新不触碰哈希字段
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

const userColumns = `id, name, email, password_hash, phone, role, avatar_url, is_email_verified,
	email_verification_token, email_verification_expire,
	reset_password_token, reset_password_expire, password_changed_at,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	var phone, avatarURL, verifyToken, resetToken sql.NullString
	var verifyExpire, resetExpire, passwordChangedAt sql.NullTime

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &phone, &user.Role,
		&avatarURL, &user.IsEmailVerified,
		&verifyToken, &verifyExpire,
		&resetToken, &resetExpire, &passwordChangedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Phone = phone.String
	user.AvatarURL = avatarURL.String
	user.EmailVerificationToken = verifyToken.String
	if verifyExpire.Valid {
		user.EmailVerificationExpire = &verifyExpire.Time
	}
	user.ResetPasswordToken = resetToken.String
	if resetExpire.Valid {
		user.ResetPasswordExpire = &resetExpire.Time
	}
	if passwordChangedAt.Valid {
		user.PasswordChangedAt = &passwordChangedAt.Time
	}
	return &user, nil
}

func hashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("生成密码哈希失败: %w", err)
	}
	return string(hashed), nil
}

func isDuplicateEntry(err error) bool {
	mysqlErr, ok := err.(*mysql.MySQLError)
	return ok && mysqlErr.Number == erDupEntry
}

func isRowReferenced(err error) bool {
	mysqlErr, ok := err.(*mysql.MySQLError)
	return ok && mysqlErr.Number == erRowIsReferenced
}

// Create 创建一个新用户，入库前哈希明文密码
// 邮箱唯一性由唯一索引兜底：并发注册竞态在这里以冲突错误浮出
func (r *userRepository) Create(user *model.User) error {
	hashed, err := hashPassword(user.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	user.Password = ""
	if user.Role == "" {
		user.Role = model.RoleCustomer
	}

	query := `INSERT INTO users
		(name, email, password_hash, phone, role, is_email_verified, email_verification_token, email_verification_expire)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.Exec(query,
		user.Name, user.Email, user.PasswordHash, nullString(user.Phone), user.Role,
		user.IsEmailVerified, nullString(user.EmailVerificationToken), user.EmailVerificationExpire)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.New(apperrors.ErrUserExists, "User already exists")
		}
		util.Logger.Error("创建用户失败", zap.Error(err), zap.String("email", user.Email))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = int(id)
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// FindByID 通过ID查找用户，未找到时返回 (nil, nil)
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// FindByEmail 通过邮箱查找用户，未找到时返回 (nil, nil)
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// FindByVerificationToken 按复合条件查找：ID、令牌摘要匹配且未过期
// 过期判断在同一条查询里完成，令牌匹配与时间检查之间没有窗口
func (r *userRepository) FindByVerificationToken(userID int, tokenHash string, now time.Time) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE id = ? AND email_verification_token = ? AND email_verification_expire > ?`
	user, err := scanUser(r.db.QueryRow(query, userID, tokenHash, now))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// FindByResetToken 按"重置令牌摘要 + 未过期"复合条件查找
func (r *userRepository) FindByResetToken(tokenHash string, now time.Time) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE reset_password_token = ? AND reset_password_expire > ?`
	user, err := scanUser(r.db.QueryRow(query, tokenHash, now))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// UpdateProfile 更新用户资料字段，不触碰密码与令牌
func (r *userRepository) UpdateProfile(user *model.User) error {
	_, err := r.db.Exec(`
		UPDATE users SET name = ?, phone = ?, updated_at = ? WHERE id = ?`,
		user.Name, nullString(user.Phone), time.Now(), user.ID)
	return err
}

// UpdateAvatar 更新用户头像
func (r *userRepository) UpdateAvatar(userID int, avatarURL string) error {
	_, err := r.db.Exec(`UPDATE users SET avatar_url = ?, updated_at = ? WHERE id = ?`,
		avatarURL, time.Now(), userID)
	return err
}

// UpdateRole 更新用户角色
func (r *userRepository) UpdateRole(userID int, role string) error {
	_, err := r.db.Exec(`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role, time.Now(), userID)
	return err
}

// SetVerificationToken 写入新的验证令牌摘要，旧令牌随之失效
func (r *userRepository) SetVerificationToken(userID int, tokenHash string, expire time.Time) error {
	_, err := r.db.Exec(`
		UPDATE users SET email_verification_token = ?, email_verification_expire = ?, updated_at = ?
		WHERE id = ?`,
		tokenHash, expire, time.Now(), userID)
	return err
}

// MarkEmailVerified 置位验证标记，令牌摘要与过期时间一并清除
func (r *userRepository) MarkEmailVerified(userID int) error {
	_, err := r.db.Exec(`
		UPDATE users SET is_email_verified = true,
			email_verification_token = NULL, email_verification_expire = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now(), userID)
	return err
}

// SetResetToken 写入新的密码重置令牌摘要
func (r *userRepository) SetResetToken(userID int, tokenHash string, expire time.Time) error {
	_, err := r.db.Exec(`
		UPDATE users SET reset_password_token = ?, reset_password_expire = ?, updated_at = ?
		WHERE id = ?`,
		tokenHash, expire, time.Now(), userID)
	return err
}

// UpdatePassword 重新哈希密码，重置令牌字段一并清除
func (r *userRepository) UpdatePassword(userID int, plainPassword string, changedAt time.Time) error {
	hashed, err := hashPassword(plainPassword)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		UPDATE users SET password_hash = ?, password_changed_at = ?,
			reset_password_token = NULL, reset_password_expire = NULL, updated_at = ?
		WHERE id = ?`,
		hashed, changedAt, time.Now(), userID)
	return err
}

// Count 返回用户总数
func (r *userRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// FindAll 返回分页的用户列表
func (r *userRepository) FindAll(page, pageSize int) ([]*model.User, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CreateAddress 创建一个新地址
func (r *userRepository) CreateAddress(address *model.Address) error {
	query := `INSERT INTO user_addresses
		(user_id, street, city, state, zip_code, country, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.Exec(query,
		address.UserID, address.Street, address.City, address.State,
		address.ZipCode, address.Country, address.IsDefault)
	if err != nil {
		util.Logger.Error("创建地址失败", zap.Error(err), zap.Int("user_id", address.UserID))
		return fmt.Errorf("failed to create address: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	address.ID = int(id)
	return nil
}

// UpdateAddress 更新地址信息，按 user_id 约束归属
func (r *userRepository) UpdateAddress(address *model.Address) error {
	query := `UPDATE user_addresses
		SET street = ?, city = ?, state = ?, zip_code = ?, country = ?, is_default = ?
		WHERE id = ? AND user_id = ?`
	result, err := r.db.Exec(query,
		address.Street, address.City, address.State, address.ZipCode,
		address.Country, address.IsDefault, address.ID, address.UserID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrResourceNotFound, "Address not found")
	}
	return nil
}

// DeleteAddress 删除地址
func (r *userRepository) DeleteAddress(id, userID int) error {
	result, err := r.db.Exec(`DELETE FROM user_addresses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrResourceNotFound, "Address not found")
	}
	return nil
}

// GetAddressByID 通过ID查找地址
func (r *userRepository) GetAddressByID(id int) (*model.Address, error) {
	var address model.Address
	query := `SELECT id, user_id, street, city, state, zip_code, country, is_default, created_at, updated_at
		FROM user_addresses WHERE id = ?`
	err := r.db.QueryRow(query, id).Scan(
		&address.ID, &address.UserID, &address.Street, &address.City, &address.State,
		&address.ZipCode, &address.Country, &address.IsDefault,
		&address.CreatedAt, &address.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// ListUserAddresses 返回用户的地址列表，默认地址排在最前
func (r *userRepository) ListUserAddresses(userID int) ([]*model.Address, error) {
	query := `SELECT id, user_id, street, city, state, zip_code, country, is_default, created_at, updated_at
		FROM user_addresses WHERE user_id = ?
		ORDER BY is_default DESC, created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []*model.Address
	for rows.Next() {
		var address model.Address
		err := rows.Scan(
			&address.ID, &address.UserID, &address.Street, &address.City, &address.State,
			&address.ZipCode, &address.Country, &address.IsDefault,
			&address.CreatedAt, &address.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, &address)
	}
	return addresses, rows.Err()
}

// SetDefaultAddress 设置默认地址，先清后设在同一事务内完成
func (r *userRepository) SetDefaultAddress(userID, addressID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec(`UPDATE user_addresses SET is_default = false WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to unset default addresses: %w", err)
	}

	result, err := tx.Exec(`UPDATE user_addresses SET is_default = true WHERE id = ? AND user_id = ?`,
		addressID, userID)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrResourceNotFound, "Address not found")
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
