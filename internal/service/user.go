package service

import (
	"GoGallery/internal/repo"
	"GoGallery/model"
	"GoGallery/utils"
	"errors"
	"log"

	"gorm.io/gorm"
)

// RegisterUser creates a user with a hashed password. A welcome email is
// sent best effort when SMTP is configured; registration never fails on it.
func RegisterUser(name, email, password string) error {
	var existing model.User
	err := repo.Db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return &DatabaseError{Op: "find user", Err: err}
	}

	hash, err := utils.GetPwd(password)
	if err != nil {
		return err
	}
	user := model.User{
		Name:     name,
		Email:    email,
		Password: hash,
	}
	if err := repo.Db.Create(&user).Error; err != nil {
		return &DatabaseError{Op: "create user", Err: err}
	}

	if err := utils.SendWelcomeMail(email, name); err != nil {
		log.Printf("welcome mail to %s skipped: %v", email, err)
	}
	return nil
}

// AuthenticateUser verifies credentials and returns the user. Unknown email
// and wrong password produce the same failure so accounts cannot be
// enumerated.
func AuthenticateUser(email, password string) (*model.User, error) {
	var user model.User
	err := repo.Db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, &DatabaseError{Op: "find user", Err: err}
	}
	if !utils.CheckPwd(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
