package models

import "testing"

func TestSubscriptionMatchesFuelType(t *testing.T) {
	all := Subscription{}
	if !all.MatchesFuelType(FuelDiesel) {
		t.Error("empty fuelTypes should match every fuel type")
	}

	diesel := Subscription{FuelTypes: []string{"diesel"}}
	if !diesel.MatchesFuelType(FuelDiesel) {
		t.Error("diesel subscription should match diesel")
	}
	if diesel.MatchesFuelType(FuelBenzene95) {
		t.Error("diesel subscription should not match benzene_95")
	}

	mixed := Subscription{FuelTypes: []string{"Diesel", "benzene_97"}}
	if !mixed.MatchesFuelType(FuelBenzene97) {
		t.Error("mixed subscription should match benzene_97")
	}
	if !mixed.MatchesFuelType(FuelDiesel) {
		t.Error("fuel type matching should be case-insensitive")
	}

	garbage := Subscription{FuelTypes: []string{"kerosene"}}
	if garbage.MatchesFuelType(FuelDiesel) {
		t.Error("unknown stored fuel types should never match")
	}
}

func TestNotificationMarkAsRead(t *testing.T) {
	var n Notification
	n.MarkAsRead()
	if !n.IsRead || n.ReadAt == nil {
		t.Errorf("MarkAsRead left IsRead=%v ReadAt=%v", n.IsRead, n.ReadAt)
	}
}
