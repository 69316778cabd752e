package render

import (
	"fmt"

	"dailydash/internal/client/dom"
	"dailydash/internal/client/state"
	"dailydash/internal/domain"
)

// Every non-dashboard screen is a full remount. These views carry no
// patched content, so there is nothing to reconcile.

// MountLogin replaces the page with the sign-in / sign-up screen.
func (r *Reconciler) MountLogin(st *state.Store) {
	login := dom.El("div", "login-panel").Append(
		dom.El("h2", "").SetText("Welcome to DailyDash"),
		dom.El("input", "login-email").
			SetAttr("type", "email").SetAttr("placeholder", "Email"),
		dom.El("input", "login-password").
			SetAttr("type", "password").SetAttr("placeholder", "Password"),
		dom.El("button", "login-btn").SetText("Sign In"),
	)
	signup := dom.El("div", "signup-panel").Append(
		dom.El("h2", "").SetText("New here?"),
		dom.El("input", "signup-name").
			SetAttr("type", "text").SetAttr("placeholder", "Name"),
		dom.El("input", "signup-email").
			SetAttr("type", "email").SetAttr("placeholder", "Email"),
		dom.El("input", "signup-password").
			SetAttr("type", "password").SetAttr("placeholder", "Password"),
		dom.El("button", "signup-btn").SetText("Create Account"),
	)
	root := dom.El("div", "app").Append(
		dom.El("section", "login-view").Append(
			login,
			signup,
			dom.El("p", "auth-error", "error-text"),
		),
	)
	r.doc.Mount(root)
	r.applyTheme(st)
}

// SetAuthError shows a failed login or signup message on the login
// screen.
func (r *Reconciler) SetAuthError(message string) {
	if p := r.doc.Find("auth-error"); p != nil {
		p.SetText(message)
	}
}

// MountPreferences replaces the page with the first-run category
// picker.
func (r *Reconciler) MountPreferences(st *state.Store, draft *state.PreferenceDraft) {
	root := dom.El("div", "app").Append(
		dom.El("section", "prefs-view").Append(
			dom.El("h2", "").SetText("Choose your interests"),
			dom.El("p", "prefs-hint"),
			r.preferenceOptions(draft),
			dom.El("button", "prefs-save").SetText("Save Preferences"),
		),
	)
	r.doc.Mount(root)
	r.applyTheme(st)
	r.RefreshPreferenceOptions(draft)
}

// MountSettings replaces the page with the settings screen: the same
// category picker plus a way back.
func (r *Reconciler) MountSettings(st *state.Store, draft *state.PreferenceDraft) {
	root := dom.El("div", "app").Append(
		dom.El("section", "settings-view").Append(
			dom.El("h2", "").SetText("Settings"),
			dom.El("p", "prefs-hint"),
			r.preferenceOptions(draft),
			dom.El("div", "settings-actions").Append(
				dom.El("button", "prefs-save").SetText("Save Preferences"),
				dom.El("button", "theme-btn").SetText(themeLabel(st.Theme)),
				dom.El("button", "settings-back").SetText("Back to Dashboard"),
			),
		),
	)
	r.doc.Mount(root)
	r.applyTheme(st)
	r.RefreshPreferenceOptions(draft)
}

func (r *Reconciler) preferenceOptions(draft *state.PreferenceDraft) *dom.Node {
	options := dom.El("div", "prefs-options")
	for _, c := range r.categories {
		btn := dom.El("button", "", "pref-option").
			SetText(c).
			SetAttr("data-category", c)
		btn.ToggleClass("selected", draft.Has(c))
		options.Append(btn)
	}
	return options
}

// RefreshPreferenceOptions re-applies selection classes and the count
// hint in place after a toggle, without remounting the screen.
func (r *Reconciler) RefreshPreferenceOptions(draft *state.PreferenceDraft) {
	options := r.doc.Find("prefs-options")
	if options == nil {
		return
	}
	for _, btn := range options.Children {
		btn.ToggleClass("selected", draft.Has(btn.Attr("data-category")))
	}
	if hint := r.doc.Find("prefs-hint"); hint != nil {
		hint.SetText(fmt.Sprintf("Pick up to %d categories (%d selected)",
			domain.MaxPreferences, draft.Count()))
	}
}

// MountAdmin replaces the page with the admin source overview.
func (r *Reconciler) MountAdmin(st *state.Store, sourceList []domain.Source) {
	list := dom.El("ul", "source-list")
	for _, src := range sourceList {
		list.Append(dom.El("li", "", "source-row").
			SetAttr("data-id", fmt.Sprintf("%d", src.ID)).
			Append(
				dom.El("span", "", "source-name").SetText(src.Name),
				dom.El("span", "", "source-category").SetText(src.Category),
				dom.El("span", "", "source-url").SetText(src.URL),
			))
	}
	root := dom.El("div", "app").Append(
		dom.El("section", "admin-view").Append(
			dom.El("header", "admin-header").Append(
				dom.El("h2", "").SetText("Source Administration"),
				dom.El("button", "logout-btn").SetText("Log Out"),
			),
			list,
		),
	)
	r.doc.Mount(root)
	r.applyTheme(st)
}
