// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

//go:build integration

package integration

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/internal/client"
)

var _ = Describe("Auth API on PostgreSQL", func() {
	var c *client.Client

	BeforeEach(func() {
		resetDatabase()
		var err error
		c, err = client.New(env.server.URL)
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs the sign-up, sign-in, sign-out scenario", func() {
		created, err := c.SignUp(env.ctx, client.SignUpRequest{
			Email:    "alice@test.com",
			Password: "pass123",
			UserType: "student",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(created.Email).To(Equal("alice@test.com"))

		signedIn, err := c.SignIn(env.ctx, "ALICE@test.com", "pass123")
		Expect(err).NotTo(HaveOccurred())
		Expect(signedIn.ID).To(Equal(created.ID))

		me, err := c.Me(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(me).NotTo(BeNil())
		Expect(me.ID).To(Equal(created.ID))

		_, err = c.SignIn(env.ctx, "alice@test.com", "wrongpass")
		var apiErr *client.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.Status).To(Equal(http.StatusUnauthorized))
		Expect(apiErr.Message).To(Equal("Invalid email or password"))

		Expect(c.SignOut(env.ctx)).To(Succeed())
		Expect(c.SignOut(env.ctx)).To(Succeed())

		me, err = c.Me(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(me).To(BeNil())
	})

	It("rejects a duplicate email in any casing", func() {
		_, err := c.SignUp(env.ctx, client.SignUpRequest{Email: "bob@test.com", Password: "secret1", UserType: "admin"})
		Expect(err).NotTo(HaveOccurred())

		_, err = c.SignUp(env.ctx, client.SignUpRequest{Email: "  BOB@Test.COM ", Password: "secret2", UserType: "student"})
		var apiErr *client.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.Status).To(Equal(http.StatusConflict))
	})

	It("lets exactly one of many concurrent sign-ups for the same email win", func() {
		const attempts = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			created   int
			conflicts int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				cl, err := client.New(env.server.URL)
				Expect(err).NotTo(HaveOccurred())
				_, err = cl.SignUp(env.ctx, client.SignUpRequest{Email: "race@test.com", Password: "secret1", UserType: "student"})

				mu.Lock()
				defer mu.Unlock()
				var apiErr *client.APIError
				switch {
				case err == nil:
					created++
				case errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict:
					conflicts++
				default:
					Fail("unexpected sign-up error: " + err.Error())
				}
			}()
		}
		wg.Wait()

		Expect(created).To(Equal(1))
		Expect(conflicts).To(Equal(attempts - 1))

		var count int
		Expect(env.pool.QueryRow(env.ctx, "SELECT COUNT(*) FROM users WHERE email = $1", "race@test.com").Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("writes the profile row and records the last sign-in", func() {
		created, err := c.SignUp(env.ctx, client.SignUpRequest{
			Email:    "carol@test.com",
			Password: "secret1",
			UserType: "admin",
			FullName: "Carol",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(created.LastLogin).To(BeNil())

		var fullName, userType string
		Expect(env.pool.QueryRow(env.ctx,
			"SELECT full_name, user_type FROM user_profiles WHERE id = $1", created.ID,
		).Scan(&fullName, &userType)).To(Succeed())
		Expect(fullName).To(Equal("Carol"))
		Expect(userType).To(Equal("admin"))

		before := time.Now().Add(-time.Minute)
		signedIn, err := c.SignIn(env.ctx, "carol@test.com", "secret1")
		Expect(err).NotTo(HaveOccurred())
		Expect(signedIn.LastLogin).NotTo(BeNil())

		var lastLogin *time.Time
		Expect(env.pool.QueryRow(env.ctx,
			"SELECT last_login FROM users WHERE id = $1", created.ID,
		).Scan(&lastLogin)).To(Succeed())
		Expect(lastLogin).NotTo(BeNil())
		Expect(*lastLogin).To(BeTemporally(">", before))
	})

	It("drops the session of a deactivated account", func() {
		_, err := c.SignUp(env.ctx, client.SignUpRequest{Email: "dave@test.com", Password: "secret1", UserType: "student"})
		Expect(err).NotTo(HaveOccurred())
		_, err = c.SignIn(env.ctx, "dave@test.com", "secret1")
		Expect(err).NotTo(HaveOccurred())

		Expect(env.svc.Deactivate(env.ctx, "dave@test.com")).To(Succeed())

		me, err := c.Me(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(me).To(BeNil())

		_, err = c.SignIn(env.ctx, "dave@test.com", "secret1")
		var apiErr *client.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.Status).To(Equal(http.StatusUnauthorized))

		_, err = c.SignUp(env.ctx, client.SignUpRequest{Email: "dave@test.com", Password: "secret1", UserType: "student"})
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.Status).To(Equal(http.StatusConflict), "a deactivated email stays reserved")
	})
})

var _ = Describe("Page guard on PostgreSQL", func() {
	BeforeEach(func() {
		resetDatabase()
		_, err := env.svc.SignUp(env.ctx, auth.SignUpInput{Email: "erin@test.com", Password: "secret1", Role: "student"})
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("redirects by session and role",
		func(signIn bool, path string, wantStatus int, wantLocation string) {
			browser := newBrowser()
			if signIn {
				resp, err := browser.Post(env.server.URL+"/auth/signin", "application/json",
					strings.NewReader(`{"email":"erin@test.com","password":"secret1"}`))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.Body.Close()).To(Succeed())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			}

			resp, err := browser.Get(env.server.URL + path)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Body.Close()).To(Succeed())
			Expect(resp.StatusCode).To(Equal(wantStatus))
			Expect(resp.Header.Get("Location")).To(Equal(wantLocation))
		},
		Entry("anonymous on an admin page", false, "/admin/dashboard", http.StatusSeeOther, "/"),
		Entry("anonymous on a student page", false, "/student/dashboard", http.StatusSeeOther, "/"),
		Entry("student on an admin page", true, "/admin/grades", http.StatusSeeOther, "/student/dashboard"),
		Entry("student on a student page", true, "/student/dashboard", http.StatusOK, ""),
	)
})
