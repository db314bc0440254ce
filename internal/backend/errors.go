package backend

import (
	"net/http"
	"sort"

	"github.com/rs/zerolog/log"

	"livraria/internal/models"
)

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message string, details []string) {
	data := envelope{"mensagem": message}
	if len(details) > 0 {
		data["erros"] = details
	}
	if err := writeJSON(w, status, data); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("erro ao escrever resposta")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse registra o erro e devolve uma mensagem genérica.
func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("erro interno")
	errorResponse(w, r, http.StatusInternalServerError, "Erro interno do servidor", nil)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, "Livro não encontrado", nil)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, "Requisição inválida", []string{err.Error()})
}

// failedValidationResponse devolve 422 com as mensagens ordenadas pelo nome do campo.
func failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	fields := models.FieldErrors(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make([]string, 0, len(keys))
	for _, k := range keys {
		details = append(details, fields[k])
	}
	errorResponse(w, r, http.StatusUnprocessableEntity, "Dados inválidos", details)
}
