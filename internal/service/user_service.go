package service

import (
	"fmt"
	"mime/multipart"
	"time"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/repository/interfaces"
	"github.com/MHR-RONY/Gramer--Bazar/internal/storage"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"go.uber.org/zap"
)

// UserServiceInterface 定义了账号与凭证服务的所有操作
type UserServiceInterface interface {
	Register(name, email, password, phone string) (*model.User, string, error)
	Login(email, password string) (*model.User, string, error)
	VerifyEmail(userID int, otp string) (*model.User, error)
	ResendOTP(userID int) error
	ForgotPassword(email string) error
	ResetPassword(token, newPassword string) (string, error)

	GetUserByID(id int) (*model.User, error)
	UpdateProfile(userID int, name, phone string) (*model.User, error)
	UpdateAvatar(userID int, file *multipart.FileHeader) (string, error)

	CreateAddress(address *model.Address) error
	UpdateAddress(address *model.Address) error
	DeleteAddress(id, userID int) error
	ListUserAddresses(userID int) ([]*model.Address, error)
	SetDefaultAddress(userID, addressID int) error
}

// UserService 账号与凭证服务
// 认证失败的对外文案刻意保持模糊，不区分"用户不存在"与"密码错误"
type UserService struct {
	userRepo     interfaces.UserRepository
	emailService EmailSenderInterface
	tokens       *util.TokenManager
	fileStorage  storage.FileStorage
}

func NewUserService(userRepo interfaces.UserRepository, emailService EmailSenderInterface,
	tokens *util.TokenManager, fileStorage storage.FileStorage) *UserService {
	return &UserService{
		userRepo:     userRepo,
		emailService: emailService,
		tokens:       tokens,
		fileStorage:  fileStorage,
	}
}

// Register 注册新用户并发送验证码邮件
// 先落库再发信：验证码入库成功后邮件投递失败时返回 ErrEmailDelivery，
// 用户仍可通过 ResendOTP 重新获取验证码
func (s *UserService) Register(name, email, password, phone string) (*model.User, string, error) {
	email = util.NormalizeEmail(email)

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: password,
		Phone:    phone,
		Role:     model.RoleCustomer,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	otp, err := util.GenerateOTP()
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternal, "Failed to generate verification code", err)
	}
	expire := time.Now().Add(util.OTPExpire)
	if err := s.userRepo.SetVerificationToken(user.ID, util.HashToken(otp), expire); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternal, "Failed to generate token", err)
	}

	if err := s.emailService.SendOTPEmail(user.Email, user.Name, otp); err != nil {
		util.Logger.Error("注册验证码邮件发送失败",
			zap.Error(err), zap.Int("user_id", user.ID))
		return nil, "", err
	}

	util.Logger.Info("用户注册成功", zap.Int("user_id", user.ID), zap.String("email", user.Email))
	return user, token, nil
}

// Login 校验凭证并签发会话令牌
func (s *UserService) Login(email, password string) (*model.User, string, error) {
	email = util.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrDatabase, "Failed to find user", err)
	}
	// 用户不存在与密码不匹配返回同一文案
	if user == nil || !user.CheckPassword(password) {
		return nil, "", apperrors.New(apperrors.ErrInvalidCredentials, "Invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternal, "Failed to generate token", err)
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return user, token, nil
}

// VerifyEmail 用验证码完成邮箱验证
// 查询本身带过期条件，错码与过期对外不做区分
func (s *UserService) VerifyEmail(userID int, otp string) (*model.User, error) {
	user, err := s.userRepo.FindByVerificationToken(userID, util.HashToken(otp), time.Now())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to verify email", err)
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrInvalidOTP, "Invalid or expired OTP")
	}

	if err := s.userRepo.MarkEmailVerified(user.ID); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to mark email verified", err)
	}
	user.IsEmailVerified = true
	user.EmailVerificationToken = ""
	user.EmailVerificationExpire = nil

	util.Logger.Info("邮箱验证成功", zap.Int("user_id", user.ID))
	return user, nil
}

// ResendOTP 重新生成验证码并发送，旧验证码随之失效
func (s *UserService) ResendOTP(userID int) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find user", err)
	}
	if user == nil {
		return apperrors.New(apperrors.ErrUserNotFound, "User not found")
	}
	if user.IsEmailVerified {
		return apperrors.New(apperrors.ErrAlreadyVerified, "Email already verified")
	}

	otp, err := util.GenerateOTP()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to generate verification code", err)
	}
	expire := time.Now().Add(util.OTPExpire)
	if err := s.userRepo.SetVerificationToken(user.ID, util.HashToken(otp), expire); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to save verification code", err)
	}

	if err := s.emailService.SendOTPEmail(user.Email, user.Name, otp); err != nil {
		return err
	}

	util.Logger.Info("验证码已重新发送", zap.Int("user_id", user.ID))
	return nil
}

// ForgotPassword 生成重置令牌并发送重置邮件
// 邮箱未注册时返回 404，明文令牌只进入邮件，库中只存摘要
func (s *UserService) ForgotPassword(email string) error {
	email = util.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find user", err)
	}
	if user == nil {
		return apperrors.New(apperrors.ErrUserNotFound, "User not found")
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to generate reset token", err)
	}
	expire := time.Now().Add(util.ResetTokenExpire)
	if err := s.userRepo.SetResetToken(user.ID, util.HashToken(token), expire); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to save reset token", err)
	}

	if err := s.emailService.SendPasswordResetEmail(user.Email, user.Name, token); err != nil {
		return err
	}

	util.Logger.Info("密码重置邮件已发送", zap.Int("user_id", user.ID))
	return nil
}

// ResetPassword 用重置令牌设置新密码并签发新会话
// 成功后旧会话因 password_changed_at 前移而全部失效
func (s *UserService) ResetPassword(token, newPassword string) (string, error) {
	user, err := s.userRepo.FindByResetToken(util.HashToken(token), time.Now())
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabase, "Failed to find user", err)
	}
	if user == nil {
		return "", apperrors.New(apperrors.ErrInvalidResetToken, "Invalid or expired reset token")
	}

	// DATETIME 列只有秒级精度且会对纳秒四舍五入，先截断到秒，
	// 保证落库的改密时间不晚于随后签发令牌的 iat
	changedAt := time.Now().Truncate(time.Second)
	if err := s.userRepo.UpdatePassword(user.ID, newPassword, changedAt); err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabase, "Failed to update password", err)
	}

	sessionToken, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "Failed to generate token", err)
	}

	util.Logger.Info("密码重置成功", zap.Int("user_id", user.ID))
	return sessionToken, nil
}

// GetUserByID 获取用户信息，地址随之加载
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to find user", err)
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrUserNotFound, "User not found")
	}

	addresses, err := s.userRepo.ListUserAddresses(id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to load addresses", err)
	}
	user.Addresses = addresses
	return user, nil
}

// UpdateProfile 更新姓名与电话，邮箱与角色不在此处修改
func (s *UserService) UpdateProfile(userID int, name, phone string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to find user", err)
	}
	if user == nil {
		return nil, apperrors.New(apperrors.ErrUserNotFound, "User not found")
	}

	if name != "" {
		user.Name = name
	}
	if phone != "" {
		user.Phone = phone
	}
	if err := s.userRepo.UpdateProfile(user); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "Failed to update profile", err)
	}

	util.Logger.Info("用户资料已更新", zap.Int("user_id", user.ID))
	return user, nil
}

// UpdateAvatar 上传头像并更新用户记录
func (s *UserService) UpdateAvatar(userID int, file *multipart.FileHeader) (string, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabase, "Failed to find user", err)
	}
	if user == nil {
		return "", apperrors.New(apperrors.ErrUserNotFound, "User not found")
	}

	path := fmt.Sprintf("avatars/%d/%s", userID, util.GenerateUniqueFilename(file.Filename))
	url, err := s.fileStorage.UploadFile(file, path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "Failed to upload avatar", err)
	}

	if err := s.userRepo.UpdateAvatar(userID, url); err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabase, "Failed to update avatar", err)
	}
	return url, nil
}

// CreateAddress 新增收货地址
func (s *UserService) CreateAddress(address *model.Address) error {
	if err := s.userRepo.CreateAddress(address); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to create address", err)
	}
	return nil
}

// UpdateAddress 更新收货地址，仅限本人
func (s *UserService) UpdateAddress(address *model.Address) error {
	existing, err := s.userRepo.GetAddressByID(address.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find address", err)
	}
	if existing == nil || existing.UserID != address.UserID {
		return apperrors.New(apperrors.ErrResourceNotFound, "Address not found")
	}
	return s.userRepo.UpdateAddress(address)
}

// DeleteAddress 删除收货地址，仅限本人
func (s *UserService) DeleteAddress(id, userID int) error {
	return s.userRepo.DeleteAddress(id, userID)
}

// ListUserAddresses 列出用户的收货地址
func (s *UserService) ListUserAddresses(userID int) ([]*model.Address, error) {
	return s.userRepo.ListUserAddresses(userID)
}

// SetDefaultAddress 设置默认地址，仅限本人
func (s *UserService) SetDefaultAddress(userID, addressID int) error {
	existing, err := s.userRepo.GetAddressByID(addressID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "Failed to find address", err)
	}
	if existing == nil || existing.UserID != userID {
		return apperrors.New(apperrors.ErrResourceNotFound, "Address not found")
	}
	return s.userRepo.SetDefaultAddress(userID, addressID)
}
