package service

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-dataset/internal/auth"
	"github.com/spec-kit/ticket-dataset/internal/config"
	"github.com/spec-kit/ticket-dataset/pkg/util/errorutil"
)

var _ = Describe("AuthService", func() {
	var (
		tokens *auth.TokenManager
		svc    *AuthService
	)

	BeforeEach(func() {
		hash, err := auth.HashSecret("etl-secret", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		tokens = auth.NewTokenManager("jwt", time.Minute)
		svc, err = NewAuthService([]config.ClientCredential{{ID: "etl", Role: "operator", SecretHash: hash}}, tokens)
		Expect(err).NotTo(HaveOccurred())
	})

	It("issues a token carrying the client role", func() {
		issued, err := svc.IssueToken(context.Background(), "etl", "etl-secret")
		Expect(err).NotTo(HaveOccurred())
		Expect(issued.Role).To(Equal(auth.RoleOperator))

		claims, err := tokens.ParseToken(issued.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.ClientID).To(Equal("etl"))
	})

	It("rejects bad credentials alike", func() {
		_, err := svc.IssueToken(context.Background(), "etl", "wrong")
		Expect(errorutil.ToDomainError(err).Code).To(Equal("UNAUTHORIZED"))
		_, err = svc.IssueToken(context.Background(), "nobody", "etl-secret")
		Expect(errorutil.ToDomainError(err).Code).To(Equal("UNAUTHORIZED"))
	})

	It("refuses misconfigured clients", func() {
		_, err := NewAuthService([]config.ClientCredential{{ID: "x", Role: "admin", SecretHash: "h"}}, tokens)
		Expect(err).To(MatchError(ContainSubstring("unknown role")))

		dup := []config.ClientCredential{{ID: "x", Role: "viewer", SecretHash: "h"}, {ID: "x", Role: "viewer", SecretHash: "h"}}
		_, err = NewAuthService(dup, tokens)
		Expect(err).To(MatchError(ContainSubstring("twice")))
	})
})
