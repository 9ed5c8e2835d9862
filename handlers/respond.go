package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ferreirogomes/assetledger/services"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// codeInvalidRequest cobre corpo malformado, id ou chave pública inválidos.
const codeInvalidRequest = "InvalidRequest"

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("falha ao codificar resposta: %v", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: codeInvalidRequest, Message: msg})
}

// writeError repassa o código do ledger sem alteração e escolhe o status HTTP correspondente.
func writeError(w http.ResponseWriter, err error) {
	code := services.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case services.CodeDuplicateAsset:
		status = http.StatusConflict
	case services.CodeAssetNotFound:
		status = http.StatusNotFound
	case services.CodeInsufficientSupply, services.CodeInsufficientTokenBalance:
		status = http.StatusUnprocessableEntity
	case services.CodeInvalidAmount, services.CodeMetadataTooLong:
		status = http.StatusBadRequest
	case services.CodeUnauthorized:
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		logrus.Errorf("erro interno: %v", err)
		writeJSON(w, status, errorResponse{Error: "Internal", Message: "erro interno"})
		return
	}
	writeJSON(w, status, errorResponse{Error: string(code), Message: err.Error()})
}

func assetIDParam(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}

// amountFields são os campos u64 cujo valor fora da faixa (negativo ou acima de 64 bits) é InvalidAmount.
var amountFields = map[string]bool{"amount": true, "total_supply": true}

// decodeBody decodifica o corpo JSON em dst e responde o erro quando falha.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && amountFields[typeErr.Field] {
		writeError(w, fmt.Errorf("%s = %s: %w", typeErr.Field, typeErr.Value, services.ErrInvalidAmount))
		return false
	}
	badRequest(w, err.Error())
	return false
}

// parseCaller converte a chave pública em base58; vazio resulta em Caller sem assinante.
// A assinatura on-chain nunca vem do cliente HTTP: só o listener da blockchain a preenche.
func parseCaller(key string) (services.Caller, error) {
	if key == "" {
		return services.Caller{}, nil
	}
	pk, err := solana.PublicKeyFromBase58(key)
	if err != nil {
		return services.Caller{}, err
	}
	return services.Signer(pk), nil
}
