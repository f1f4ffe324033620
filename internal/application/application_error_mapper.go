package application

import (
	"errors"

	applicationerrors "go-cto/internal/application/errors"
	employeeerrors "go-cto/internal/employee/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return applicationerrors.ErrApplicationNotFound
	}
	return err
}

func employeeLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}
	return err
}
