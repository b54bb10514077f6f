// SPDX-License-Identifier: MIT
package project

import (
	"strconv"
	"strings"

	"github.com/thatcatcamp/smartsvg/internal/manipulation"
)

// Renditions are the final texts of each device and theme
type Renditions struct {
	LightDesktop string
	LightMobile  string
	DarkDesktop  string
	DarkMobile   string
}

// SmartRequest assembles the compose request for a project. Responsive
// projects add the mobile renditions and the breakpoint; the dark theme is
// only included when a dark desktop rendition exists.
func SmartRequest(p Project, r Renditions) manipulation.SmartRequest {
	req := manipulation.SmartRequest{LightSvg: manipulation.Renditions{Desktop: r.LightDesktop}}

	switch p.(type) {
	case Logo, Illustration:
		responsive, breakpoint := Responsive(p)
		if responsive {
			req.LightSvg.Mobile = r.LightMobile
			if n, err := strconv.Atoi(strings.TrimSpace(breakpoint)); err == nil {
				req.Breakpoint = &n
			}
		}
		if r.DarkDesktop != "" {
			req.DarkSvg = &manipulation.Renditions{Desktop: r.DarkDesktop}
			if responsive {
				req.DarkSvg.Mobile = r.DarkMobile
			}
		}
	case Icon, Favicon:
		if r.DarkDesktop != "" {
			req.DarkSvg = &manipulation.Renditions{Desktop: r.DarkDesktop}
		}
	}
	return req
}
