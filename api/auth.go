package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/julienschmidt/httprouter"
)

type claims struct {
	Client string
	jwt.StandardClaims
}

// HandleLogin exchanges the shared API key for a short-lived JWT.
func (s *Server) HandleLogin() httprouter.Handle {
	type Input struct {
		APIKey string
		Client string
	}

	type Output struct {
		JWT string
	}

	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		input := &Input{}
		output := &Output{}

		err := s.Decode(w, r, input)
		if err != nil {
			s.Response(
				w, r,
				s.Error(http.StatusBadRequest, err.Error(), "HandleLogin", input),
				http.StatusBadRequest,
			)
			return
		}

		key := os.Getenv("API_KEY")
		if key == "" || subtle.ConstantTimeCompare([]byte(input.APIKey), []byte(key)) != 1 {
			s.Response(
				w, r,
				s.Error(http.StatusUnauthorized, "Bad API key.", "HandleLogin", input.Client),
				http.StatusUnauthorized,
			)
			return
		}

		accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			Client: input.Client,
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().Add(time.Minute * 60).Unix(),
				Issuer:    "audio-transcriber",
			},
		})

		accessString, err := accessToken.SignedString([]byte(os.Getenv("ACCESS_KEY")))
		output.JWT = accessString
		if err != nil {
			s.Response(
				w, r,
				s.Error(http.StatusInternalServerError, err.Error(), "HandleLogin", input.Client),
				http.StatusInternalServerError,
			)
			return
		}

		s.Response(w, r, output, http.StatusOK)
	}
}

// Validate checks the bearer token and refreshes it on the way out.
func (s *Server) Validate(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		header := r.Header.Get("Authorization")
		authHeader := strings.Split(header, " ")
		token := ""
		if len(authHeader) > 1 {
			token = authHeader[1]
		} else {
			s.Response(
				w, r,
				s.Error(http.StatusUnauthorized, "Bad Authorization header.", "Validate", header),
				http.StatusUnauthorized,
			)
			return
		}

		parsed, err := jwt.ParseWithClaims(token, &claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(os.Getenv("ACCESS_KEY")), nil
		})
		if err != nil {
			s.Response(
				w, r,
				s.Error(http.StatusUnauthorized, err.Error(), "Validate", token),
				http.StatusUnauthorized,
			)
			return
		}

		parsedClaims, ok := parsed.Claims.(*claims)
		if !ok || parsedClaims.Valid() != nil {
			s.Response(
				w, r,
				s.Error(http.StatusUnauthorized, "Invalid token.", "Validate", token),
				http.StatusUnauthorized,
			)
			return
		}

		accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			Client: parsedClaims.Client,
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().Add(time.Minute * 60).Unix(),
				Issuer:    "audio-transcriber",
			},
		})

		accessString, err := accessToken.SignedString([]byte(os.Getenv("ACCESS_KEY")))
		if err != nil {
			s.Response(
				w, r,
				s.Error(http.StatusInternalServerError, err.Error(), "Validate", parsedClaims.Client),
				http.StatusInternalServerError,
			)
			return
		}

		w.Header().Set("Authorization", "Bearer "+accessString)

		ctx := context.WithValue(r.Context(), clientKey{}, parsedClaims.Client)
		r = r.WithContext(ctx)

		h(w, r, p)
	}
}

type clientKey struct{}
