package user

import (
	"strconv"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/service"
	"github.com/gin-gonic/gin"
)

// AddressHandler 处理收货地址相关的HTTP请求
type AddressHandler struct {
	userService service.UserServiceInterface
}

func NewAddressHandler(userService service.UserServiceInterface) *AddressHandler {
	return &AddressHandler{userService}
}

type addressRequest struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// ListAddresses 列出当前用户的收货地址
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	userID := c.GetInt("user_id")

	addresses, err := h.userService.ListUserAddresses(userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"addresses": addresses}, "")
}

// CreateAddress 新增收货地址
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	address := &model.Address{
		UserID:  userID,
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
		Country: req.Country,
	}
	if err := h.userService.CreateAddress(address); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleCreated(c, gin.H{"address": address}, "Address created successfully")
}

// UpdateAddress 更新收货地址
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	userID := c.GetInt("user_id")
	addressID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid address ID"))
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.Wrap(apperrors.ErrValidation, "Invalid request data", err))
		return
	}

	address := &model.Address{
		ID:      addressID,
		UserID:  userID,
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
		Country: req.Country,
	}
	if err := h.userService.UpdateAddress(address); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, gin.H{"address": address}, "Address updated successfully")
}

// DeleteAddress 删除收货地址
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	userID := c.GetInt("user_id")
	addressID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid address ID"))
		return
	}

	if err := h.userService.DeleteAddress(addressID, userID); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, nil, "Address deleted successfully")
}

// SetDefaultAddress 设置默认收货地址
func (h *AddressHandler) SetDefaultAddress(c *gin.Context) {
	userID := c.GetInt("user_id")
	addressID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrBadRequest, "Invalid address ID"))
		return
	}

	if err := h.userService.SetDefaultAddress(userID, addressID); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	apperrors.HandleSuccess(c, nil, "Default address updated")
}
