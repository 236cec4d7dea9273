package pageclass

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		subNav    string
		wantPage  string
		wantDepth int
	}{
		{
			name:      "absent url",
			url:       "",
			wantPage:  "",
			wantDepth: 0,
		},
		{
			name:      "splash root",
			url:       "://myapp.com/#/",
			wantPage:  "splash",
			wantDepth: 0,
		},
		{
			name:      "dashboard keeps segment depth",
			url:       "://myapp.com/#/dashboard",
			wantPage:  "dashboard",
			wantDepth: 1,
		},
		{
			name:      "allow list is case insensitive",
			url:       "://myapp.com/#/auth/Create-Password",
			wantPage:  "create-password",
			wantDepth: 2,
		},
		{
			name:      "plain login",
			url:       "://myapp.com/#/login",
			wantPage:  "login",
			wantDepth: 1,
		},
		{
			name:      "login register param",
			url:       "://myapp.com/#/login?mode=register",
			wantPage:  "register",
			wantDepth: 1,
		},
		{
			name:      "login with unrelated param leaves page blank",
			url:       "://myapp.com/#/login?mode=retry",
			wantPage:  "",
			wantDepth: 1,
		},
		{
			name:      "default with goalname param",
			url:       "://localhost/#/goals/goal-category/Mobility?goalName=Walk%20150%20Feet",
			wantPage:  "walk 150 feet",
			wantDepth: 3,
		},
		{
			name:      "default with sub-navigation hint",
			url:       "://myapp.com/#/goals/goal-category/Mobility",
			subNav:    "goal:Walk 10 Feet",
			wantPage:  "Walk 10 Feet",
			wantDepth: 3,
		},
		{
			name:      "materials strips document id",
			url:       "://myehccaregiver.com/#/discharge/resources/materials/Patient%20Summary/XR-3036105856",
			wantPage:  "patient summary",
			wantDepth: 5,
		},
		{
			name:      "materials wins over sub-navigation hint",
			url:       "://myapp.com/#/discharge/resources/materials/Handouts/DOC-1",
			subNav:    "goal:ignored",
			wantPage:  "handouts",
			wantDepth: 5,
		},
		{
			name:      "invite strips invited user id",
			url:       "://myehccaregiver.com/#/invite/user-profile/7325338866",
			wantPage:  "invite",
			wantDepth: 3,
		},
		{
			name:      "percent twenty replaced in page name",
			url:       "://myapp.com/#/goals/cat?goalName=Get%20Out%20Of%20Bed",
			wantPage:  "get out of bed",
			wantDepth: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.url, tt.subNav)
			if got.Page != tt.wantPage {
				t.Errorf("Classify(%q, %q).Page = %q, want %q", tt.url, tt.subNav, got.Page, tt.wantPage)
			}
			if got.Depth != tt.wantDepth {
				t.Errorf("Classify(%q, %q).Depth = %d, want %d", tt.url, tt.subNav, got.Depth, tt.wantDepth)
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	url := "://myapp.com/#/goals/goal-category/Mobility?goalName=Walk%20150%20Feet"
	first := Classify(url, "")
	for i := 0; i < 3; i++ {
		if got := Classify(url, ""); got != first {
			t.Fatalf("Classify not deterministic: %v vs %v", got, first)
		}
	}
}
