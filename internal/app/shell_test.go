package app

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/nodo/internal/adapters/http/client"
	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/internal/session"
	"github.com/okian/nodo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolver(t *testing.T) {
	Convey("Given a resolver", t, func() {
		ctx := context.Background()
		api := &fakeAPI{}
		r := NewResolver(api, nil)

		Convey("Any failure resolves to nobody", func() {
			api.meErr = &client.RequestError{Status: 401, Message: "Unauthorized"}
			So(r.Resolve(ctx), ShouldBeNil)

			api.meErr = &client.RequestError{Message: "connection refused"}
			So(r.Resolve(ctx), ShouldBeNil)
		})

		Convey("A user without an id resolves to nobody", func() {
			api.user = &model.User{}
			So(r.Resolve(ctx), ShouldBeNil)
		})

		Convey("A user is returned as is", func() {
			api.user = &model.User{ID: "u1", Role: model.RoleDeveloper}
			So(r.Resolve(ctx), ShouldResemble, api.user)
		})
	})
}

func TestShell(t *testing.T) {
	Convey("Given a shell", t, func() {
		ctx := context.Background()
		api := &fakeAPI{
			meErr:   &client.RequestError{Status: 401, Message: "Unauthorized"},
			devDash: &model.DeveloperDashboard{},
			conDash: &model.ContractorDashboard{},
		}
		sess := session.New(nil)
		shell := NewShell(api, sess, WithLogger(logger.Nop()))

		Convey("Anonymous start shows the auth flow", func() {
			So(shell.Start(ctx), ShouldBeNil)
			v := shell.View()
			So(v.Identity, ShouldBeNil)
			So(v.Auth, ShouldNotBeNil)
			So(v.Developer, ShouldBeNil)
			So(v.Contractor, ShouldBeNil)
			So(v.Greeting(), ShouldEqual, "Welcome")
			So(v.BackendURL, ShouldEqual, "http://backend.test")
		})

		Convey("A developer gets the developer panel, loaded once", func() {
			api.meErr = nil
			api.user = &model.User{ID: "u1", Name: "Ann", Role: model.RoleDeveloper}
			So(shell.Start(ctx), ShouldBeNil)

			v := shell.View()
			So(v.Developer, ShouldNotBeNil)
			So(v.Auth, ShouldBeNil)
			So(v.Greeting(), ShouldEqual, "Ann • developer")
			So(api.Calls(), ShouldResemble, []string{"me", "developer_dashboard"})
		})

		Convey("A contractor gets the contractor panel", func() {
			api.meErr = nil
			api.user = &model.User{ID: "u2", Role: model.RoleContractor}
			So(shell.Start(ctx), ShouldBeNil)
			So(shell.View().Contractor, ShouldNotBeNil)
		})

		Convey("An unknown role gets no panel", func() {
			api.meErr = nil
			api.user = &model.User{ID: "u3", Name: "Zed", Role: "admin"}
			So(shell.Start(ctx), ShouldBeNil)
			v := shell.View()
			So(v.Identity, ShouldNotBeNil)
			So(v.Auth, ShouldBeNil)
			So(v.Developer, ShouldBeNil)
			So(v.Contractor, ShouldBeNil)
		})

		Convey("An empty identity reply is treated as anonymous", func() {
			api.meErr = nil
			api.user = &model.User{}
			So(shell.Start(ctx), ShouldBeNil)
			v := shell.View()
			So(v.Identity, ShouldBeNil)
			So(v.Auth, ShouldNotBeNil)
			So(v.Greeting(), ShouldEqual, "Welcome")
		})

		Convey("A successful login re-resolves the identity", func() {
			So(shell.Start(ctx), ShouldBeNil)
			api.loginRes = &model.LoginResult{Token: "tok"}
			api.meErr = nil
			api.user = &model.User{ID: "u2", Role: model.RoleContractor}

			So(shell.Login(ctx, "c@x.io", "pw"), ShouldBeNil)
			So(sess.Token(ctx), ShouldEqual, "tok")
			So(shell.View().Contractor, ShouldNotBeNil)

			Convey("Logout clears the token and returns to the auth flow", func() {
				api.meErr = &client.RequestError{Status: 401, Message: "Unauthorized"}
				So(shell.Logout(ctx), ShouldBeNil)
				So(sess.Authenticated(ctx), ShouldBeFalse)
				So(shell.View().Auth, ShouldNotBeNil)
			})
		})

		Convey("Logging out while anonymous is refused", func() {
			So(shell.Start(ctx), ShouldBeNil)
			So(errors.Is(shell.Logout(ctx), ErrNotAuthenticated), ShouldBeTrue)
		})

		Convey("Handle ignores TransitionNone", func() {
			So(shell.Handle(ctx, TransitionNone), ShouldBeNil)
			So(api.Calls(), ShouldBeEmpty)
		})
	})
}
