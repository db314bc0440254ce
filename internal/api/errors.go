package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Mensagens exibidas ao usuário.
const (
	MsgBadRequest    = "Requisição inválida"
	MsgNotFound      = "Livro não encontrado"
	MsgConflict      = "Conflito"
	MsgValidation    = "Dados inválidos"
	MsgServerError   = "Erro interno do servidor"
	MsgServerGeneric = "Erro no servidor. Tente novamente mais tarde"
	MsgRequest       = "Erro na requisição"
	MsgTimeout       = "Tempo de requisição esgotado"
	MsgConnection    = "Não foi possível conectar ao servidor"
)

// Error é o erro devolvido por toda operação do Client. Message já está
// pronta para ser exibida no aviso da página.
type Error struct {
	Status  int      // 0 quando não houve resposta
	Message string
	Details []string // campo "erros" do backend, quando presente
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// statusMessage traduz um status HTTP na mensagem para o usuário.
func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return MsgBadRequest
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusConflict:
		return MsgConflict
	case http.StatusUnprocessableEntity:
		return MsgValidation
	case http.StatusInternalServerError:
		return MsgServerError
	}
	if status >= 500 {
		return MsgServerGeneric
	}
	return MsgRequest
}

// networkError classifica uma falha sem resposta do servidor.
func networkError(err error) *Error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &Error{Message: MsgTimeout, Err: err}
	}
	return &Error{Message: MsgConnection, Err: err}
}

// IsNotFound informa se err é um 404 do backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsCanceled informa se a requisição foi abandonada porque a página que a
// pediu já foi encerrada.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// UserMessage devolve o texto a exibir para qualquer erro.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return MsgServerGeneric
}
