package services

import "errors"

// Code é o tipo de erro plano exposto aos chamadores.
type Code string

const (
	CodeDuplicateAsset           Code = "DuplicateAsset"
	CodeInsufficientSupply       Code = "InsufficientSupply"
	CodeInsufficientTokenBalance Code = "InsufficientTokenBalance"
	CodeInvalidAmount            Code = "InvalidAmount"
	CodeUnauthorized             Code = "Unauthorized"
	CodeAssetNotFound            Code = "AssetNotFound"
	CodeMetadataTooLong          Code = "MetadataTooLong"
)

// Error carrega um Code do ledger. Os valores Err* abaixo são sentinelas para errors.Is.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

var (
	ErrDuplicateAsset           = &Error{Code: CodeDuplicateAsset, Message: "ativo já registrado"}
	ErrInsufficientSupply       = &Error{Code: CodeInsufficientSupply, Message: "oferta restante insuficiente"}
	ErrInsufficientTokenBalance = &Error{Code: CodeInsufficientTokenBalance, Message: "saldo de tokens insuficiente no escrow"}
	ErrInvalidAmount            = &Error{Code: CodeInvalidAmount, Message: "quantidade inválida"}
	ErrUnauthorized             = &Error{Code: CodeUnauthorized, Message: "não autorizado"}
	ErrAssetNotFound            = &Error{Code: CodeAssetNotFound, Message: "ativo não encontrado"}
	ErrMetadataTooLong          = &Error{Code: CodeMetadataTooLong, Message: "URI de metadados excede a capacidade da conta"}
)

// CodeOf extrai o Code de err, ou "" se err não vier do ledger.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
