package remotetest

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skybi/tenote/internal/remote"
	"github.com/skybi/tenote/internal/tenant"
	"github.com/skybi/tenote/internal/token"
	"net/http"
	"strings"
)

type contextKey string

const contextValueUser contextKey = "user"

func withMiddlewares(end http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	final := end
	for i := len(middlewares); i > 0; i-- {
		final = middlewares[i-1](final)
	}
	return final
}

func (server *Server) middlewareRecordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, request *http.Request) {
		id := request.Header.Get(remote.HeaderRequestID)
		server.mtx.Lock()
		server.requestIDs = append(server.requestIDs, id)
		server.mtx.Unlock()
		rw.Header().Set(remote.HeaderRequestID, id)
		next.ServeHTTP(rw, request)
	})
}

// middlewareAuthenticate verifies the bearer token and loads the user it belongs to
func (server *Server) middlewareAuthenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, request *http.Request) {
		header := request.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			server.writer.WriteMessage(rw, http.StatusUnauthorized, "Missing token")
			return
		}

		claims := new(token.Claims)
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(_ *jwt.Token) (any, error) {
			return server.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token expired"
			}
			server.writer.WriteMessage(rw, http.StatusUnauthorized, message)
			return
		}

		txn := server.db.Txn(false)
		revoked, err := txn.First(tableRevocations, "id", claims.ID)
		if err != nil {
			server.writer.WriteInternalError(rw, err)
			return
		}
		if revoked != nil {
			server.writer.WriteMessage(rw, http.StatusUnauthorized, "Token revoked")
			return
		}

		obj, err := txn.First(tableUsers, "id", claims.Subject)
		if err != nil {
			server.writer.WriteInternalError(rw, err)
			return
		}
		if obj == nil {
			server.writer.WriteMessage(rw, http.StatusUnauthorized, "Unknown user")
			return
		}

		ctx := context.WithValue(request.Context(), contextValueUser, obj.(*userRecord))
		next.ServeHTTP(rw, request.WithContext(ctx))
	}
}

// middlewareTenantAdmin requires the user to be an admin of the tenant addressed by the path
func (server *Server) middlewareTenantAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, request *http.Request) {
		user := userFrom(request)
		slug := chi.URLParam(request, "slug")
		if server.tenant(server.db.Txn(false), slug) == nil {
			server.writer.WriteErrors(rw, http.StatusNotFound, errNotFound)
			return
		}
		if user.Role != tenant.RoleAdmin || user.TenantSlug != slug {
			server.writer.WriteErrors(rw, http.StatusForbidden, errForbidden)
			return
		}
		next.ServeHTTP(rw, request)
	}
}

func userFrom(request *http.Request) *userRecord {
	return request.Context().Value(contextValueUser).(*userRecord)
}
