package matchengine

import "testing"

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		c, w User
		want bool
	}{
		{
			name: "free vs free, no constraints",
			c:    User{ConnID: "c", Gender: GenderMale, Tier: TierFree, PreferredGender: PreferAny},
			w:    User{ConnID: "w", Gender: GenderFemale, Tier: TierFree, PreferredGender: PreferAny},
			want: true,
		},
		{
			name: "premium candidate wants female, waiter is female",
			c:    User{ConnID: "c", Gender: GenderMale, Tier: TierPremium, PreferredGender: PreferFemale},
			w:    User{ConnID: "w", Gender: GenderFemale, Tier: TierFree, PreferredGender: PreferAny},
			want: true,
		},
		{
			name: "premium candidate wants female, waiter is male",
			c:    User{ConnID: "c", Gender: GenderMale, Tier: TierPremium, PreferredGender: PreferFemale},
			w:    User{ConnID: "w", Gender: GenderMale, Tier: TierFree, PreferredGender: PreferAny},
			want: false,
		},
		{
			name: "premium waiter wants male, candidate is female",
			c:    User{ConnID: "c", Gender: GenderFemale, Tier: TierFree, PreferredGender: PreferAny},
			w:    User{ConnID: "w", Gender: GenderMale, Tier: TierPremium, PreferredGender: PreferMale},
			want: false,
		},
		{
			name: "premium waiter wants male, candidate is male",
			c:    User{ConnID: "c", Gender: GenderMale, Tier: TierFree, PreferredGender: PreferAny},
			w:    User{ConnID: "w", Gender: GenderMale, Tier: TierPremium, PreferredGender: PreferMale},
			want: true,
		},
		{
			name: "both premium with compatible mutual preferences",
			c:    User{ConnID: "c", Gender: GenderMale, Tier: TierPremium, PreferredGender: PreferFemale},
			w:    User{ConnID: "w", Gender: GenderFemale, Tier: TierPremium, PreferredGender: PreferMale},
			want: true,
		},
		{
			name: "both premium with incompatible mutual preferences",
			c:    User{ConnID: "c", Gender: GenderMale, Tier: TierPremium, PreferredGender: PreferFemale},
			w:    User{ConnID: "w", Gender: GenderFemale, Tier: TierPremium, PreferredGender: PreferFemale},
			want: false,
		},
		{
			name: "a connection is never eligible against itself",
			c:    User{ConnID: "same", Gender: GenderMale, Tier: TierFree, PreferredGender: PreferAny},
			w:    User{ConnID: "same", Gender: GenderMale, Tier: TierFree, PreferredGender: PreferAny},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eligible(&tt.c, &tt.w); got != tt.want {
				t.Errorf("eligible(c, w) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanOrderPrioritizesConstrainedWaiters(t *testing.T) {
	qs := newQueueSet()

	premiumWaiter := &User{ConnID: "premium-waiter", Gender: GenderMale, Tier: TierPremium, PreferredGender: PreferFemale, State: StateWaiting}
	freeWaiter := &User{ConnID: "free-waiter", Gender: GenderFemale, Tier: TierFree, PreferredGender: PreferAny, State: StateWaiting}
	qs.enqueue(premiumWaiter)
	qs.enqueue(freeWaiter)

	candidate := &User{ConnID: "candidate", Gender: GenderFemale, Tier: TierFree, PreferredGender: PreferAny}

	got := qs.scan(candidate)
	if got == nil || got.ConnID != "premium-waiter" {
		t.Fatalf("expected the constrained premium waiter to be found first, got %+v", got)
	}

	// The free waiter is still in the pool, untouched.
	if _, ok := qs.pools[PreferAny].index["free-waiter"]; !ok {
		t.Fatalf("free waiter should remain queued after the other match")
	}
}

func TestBucketForHonorsTierGate(t *testing.T) {
	tests := []struct {
		name string
		u    User
		want Preference
	}{
		{"premium with specific preference buckets by preference", User{Tier: TierPremium, PreferredGender: PreferMale}, PreferMale},
		{"premium with any preference buckets any", User{Tier: TierPremium, PreferredGender: PreferAny}, PreferAny},
		{"free with any preference buckets any", User{Tier: TierFree, PreferredGender: PreferAny}, PreferAny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bucketFor(&tt.u); got != tt.want {
				t.Errorf("bucketFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
