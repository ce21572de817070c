package effects

import (
	"github.com/robotalks/keylight/pkg/led"
	"github.com/robotalks/keylight/pkg/profile"
)

// Default builds the profile registry shipped with the controller.
func Default() profile.Registry {
	return profile.NewRegistry(
		profile.Profile{Name: "white", Effect: Solid(led.Hex(0xffffff)), Speeds: profile.Static},
		profile.Profile{Name: "red", Effect: Solid(led.Hex(0xff0000)), Speeds: profile.Static},
		profile.Profile{Name: "green", Effect: Solid(led.Hex(0x00ff00)), Speeds: profile.Static},
		profile.Profile{Name: "blue", Effect: Solid(led.Hex(0x0000ff)), Speeds: profile.Static},
		profile.Profile{Name: "miami-nights", Effect: MiamiNights(), Speeds: profile.Static},
		profile.Profile{Name: "rainbow-horizontal", Effect: RainbowHorizontal(), Speeds: profile.Static},
		profile.Profile{Name: "rainbow-vertical", Effect: RainbowVertical(), Speeds: profile.Static},
		profile.Profile{Name: "rainbow-scroll", Effect: &RainbowScroll{}, Speeds: profile.Speeds{35, 28, 21, 14}},
		profile.Profile{Name: "flow", Effect: &Flow{}, Speeds: profile.Speeds{7, 5, 2, 1}},
		profile.Profile{Name: "waterfall", Effect: &Waterfall{}, Speeds: profile.Speeds{7, 5, 2, 1}},
		profile.Profile{Name: "breathing", Effect: &Breathing{}, Speeds: profile.Speeds{5, 3, 2, 1}},
		profile.Profile{Name: "wave", Effect: &Wave{}, Speeds: profile.Speeds{5, 3, 2, 1}},
		profile.Profile{Name: "spectrum", Effect: &Spectrum{}, Speeds: profile.Speeds{11, 6, 4, 1}},
		profile.Profile{Name: "reactive-fade", Effect: &Fade{}, Speeds: profile.Speeds{4, 3, 2, 1}},
		profile.Profile{Name: "reactive-pulse", Effect: &Pulse{}, Speeds: profile.Speeds{4, 3, 2, 1}},
	)
}
