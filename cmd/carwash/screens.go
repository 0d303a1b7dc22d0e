package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"carwash-client/internal/domain"
	"carwash-client/internal/location"
	"carwash-client/internal/service"
)

func (a *app) authScreen(ctx context.Context) {
	fmt.Println("\n===== Welcome to CarWash =====")
	fmt.Println("Enter your phone number to continue")

	flow := service.NewOTPFlow(a.client, a.manager, service.NewResendTimer(a.cfg.OTPResendSeconds), a.logger)
	for {
		phone := a.readLine(a.cfg.CountryCode + " ")
		if err := flow.Start(ctx, phone); err != nil {
			printError(err)
			continue
		}
		break
	}
	a.otpScreen(ctx, flow)
}

// otpScreen corre la cuenta regresiva mientras la pantalla esta activa.
func (a *app) otpScreen(ctx context.Context, flow *service.OTPFlow) {
	screenCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer flow.Abandon()
	go flow.Timer().Run(screenCtx)

	challenge := flow.Challenge()
	fmt.Printf("\nEnter the 6-digit code sent to %s\n", service.FormatPhoneNumber(challenge.PhoneNumber, a.cfg.CountryCode))
	fmt.Printf("You can request a new code every %ds.\n", flow.Timer().Duration())
	for {
		fmt.Println("[R] Resend code  [B] Change number")
		input := a.readLine("OTP: ")

		switch strings.ToUpper(input) {
		case "B":
			return
		case "R":
			if err := flow.Resend(ctx); err != nil {
				if errors.Is(err, service.ErrResendCooldown) {
					fmt.Printf("Resend OTP in %ds\n", flow.Timer().RemainingSeconds())
					continue
				}
				printError(err)
				continue
			}
			fmt.Println("OTP sent again.")
			continue
		}

		res, err := flow.Verify(ctx, input)
		if err != nil {
			printError(err)
			continue
		}
		if !res.Success {
			fmt.Printf("Error: %s\n", res.Message)
			continue
		}
		if res.HasProfile {
			fmt.Println("Welcome back!")
		}
		return
	}
}

func (a *app) profileSetupScreen(ctx context.Context) {
	fmt.Println("\n===== Complete Your Profile =====")
	fmt.Println("Help us serve you better by providing your details")

	setup := service.NewProfileSetup(a.locator, a.client, a.manager, a.logger)
	setup.EnsureLocationPermission(ctx)

	for {
		f := setup.Form()
		fmt.Printf("\nName: %s\nAddress: %s %s\nCity: %s  State: %s  PIN: %s\n",
			f.Name, f.Line1, f.Line2, f.City, f.State, f.PostalCode)
		if f.Location != nil {
			fmt.Printf("Location: %.5f, %.5f\n", f.Location.Latitude, f.Location.Longitude)
		} else {
			fmt.Println("Location: not set")
		}
		fmt.Println("[1] Edit details  [2] Use current location  [3] Pick on map (lat,lon)")
		fmt.Println("[4] Find address  [5] Save profile  [6] Logout")

		switch a.readLine("Select an option: ") {
		case "1":
			a.editForm(setup)
		case "2":
			fmt.Println("Detecting location...")
			if err := setup.UseCurrentLocation(ctx); err != nil {
				fmt.Printf("Location Error: %v\n", err)
				continue
			}
			fmt.Println("Location detected successfully!")
		case "3":
			lat, lon, ok := parseLatLon(a.readLine("Coordinates (lat,lon): "))
			if !ok {
				fmt.Println("Invalid coordinates.")
				continue
			}
			setup.PickOnMap(ctx, lat, lon)
		case "4":
			query := a.readLine("Search address: ")
			coords := a.locator.Geocode(ctx, query)
			if coords == nil {
				fmt.Println("Address not found. Please enter it manually.")
				continue
			}
			setup.PickOnMap(ctx, coords.Latitude, coords.Longitude)
		case "5":
			if _, err := setup.Submit(ctx); err != nil {
				printError(err)
				continue
			}
			fmt.Println("Profile Created! Your profile has been set up successfully.")
			return
		case "6":
			a.manager.Logout(ctx)
			return
		default:
			fmt.Println("Invalid option.")
		}
	}
}

func (a *app) editForm(setup *service.ProfileSetup) {
	f := setup.Form()
	name := a.readDefault("Full Name", f.Name)
	line1 := a.readDefault("Address Line 1", f.Line1)
	line2 := a.readDefault("Address Line 2", f.Line2)
	city := a.readDefault("City", f.City)
	state := a.readDefault("State", f.State)
	postal := a.readDefault("Postal Code", f.PostalCode)
	setup.Update(func(f *service.ProfileForm) {
		f.Name, f.Line1, f.Line2 = name, line1, line2
		f.City, f.State, f.PostalCode = city, state, postal
	})
}

func (a *app) readDefault(label, current string) string {
	prompt := label + ": "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	if v := a.readLine(prompt); v != "" {
		return v
	}
	return current
}

func (a *app) mainMenu(ctx context.Context) {
	s := a.manager.Snapshot()
	name := s.PhoneNumber
	if s.Profile != nil && s.Profile.Name != "" {
		name = s.Profile.Name
	}
	fmt.Printf("\n===== Hello, %s! =====\n", name)
	fmt.Println("[1] Book a service  [2] My bookings  [3] Profile")
	fmt.Println("[4] Share live location  [5] Logout")

	switch a.readLine("Select an option: ") {
	case "1":
		a.bookFlow(ctx)
	case "2":
		a.bookingsScreen(ctx)
	case "3":
		a.profileScreen(ctx)
	case "4":
		a.watchLocation(ctx)
	case "5":
		if strings.EqualFold(a.readLine("Are you sure you want to logout? [y/N]: "), "y") {
			a.manager.Logout(ctx)
		}
	default:
		fmt.Println("Invalid option.")
	}
}

func (a *app) bookFlow(ctx context.Context) {
	fmt.Println("\nOur Services")
	for i, st := range domain.ServiceTypes {
		price, _ := service.ServicePrice(st)
		fmt.Printf("[%d] %s - Rs.%.0f\n", i+1, service.ServiceTitle(st), price)
	}
	idx, err := strconv.Atoi(a.readLine("Select a service: "))
	if err != nil || idx < 1 || idx > len(domain.ServiceTypes) {
		fmt.Println("Invalid selection.")
		return
	}
	st := domain.ServiceTypes[idx-1]

	req := service.BookingRequest{
		ServiceType:         st,
		VehicleType:         a.readLine("Vehicle type (optional): "),
		VehicleNumber:       a.readLine("Vehicle number (optional): "),
		SpecialInstructions: a.readLine("Special instructions (optional): "),
	}
	if when := a.readLine("Schedule (YYYY-MM-DD HH:MM, empty for ASAP): "); when != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04", when, time.Local)
		if err != nil {
			fmt.Println("Invalid date.")
			return
		}
		req.ScheduledAt = &t
	}

	price, _ := service.ServicePrice(st)
	confirm := a.readLine(fmt.Sprintf("Do you want to book %s for Rs.%.0f? [y/N]: ", service.ServiceTitle(st), price))
	if !strings.EqualFold(confirm, "y") {
		return
	}
	b, err := a.bookings.Create(ctx, req)
	if err != nil {
		printError(err)
		return
	}
	fmt.Printf("Booking confirmed! ID: #%s\n", b.ID)
}

func (a *app) bookingsScreen(ctx context.Context) {
	list, err := a.bookings.List(ctx)
	if err != nil {
		printError(err)
		return
	}
	if len(list) == 0 {
		fmt.Println("No bookings yet.")
		return
	}
	for i, b := range list {
		fmt.Printf("[%d] %s  %s  Rs.%.0f  %s, %s  (#%s)\n",
			i+1, service.ServiceTitle(b.ServiceType), b.Status, b.Price, b.AddressLine1, b.City, b.ID)
	}
	fmt.Println("[D<n>] Details  [C<n>] Cancel  [S<n>] Update status  [F] Filter by status  [Enter] Back")
	choice := strings.ToUpper(a.readLine("> "))
	if choice == "" {
		return
	}

	pick := func() (domain.Booking, bool) {
		idx, err := strconv.Atoi(choice[1:])
		if err != nil || idx < 1 || idx > len(list) {
			fmt.Println("Invalid selection.")
			return domain.Booking{}, false
		}
		return list[idx-1], true
	}

	switch choice[0] {
	case 'D':
		sel, ok := pick()
		if !ok {
			return
		}
		b, err := a.bookings.Get(ctx, sel.ID)
		if err != nil {
			printError(err)
			return
		}
		fmt.Print(bookingDetails(b, time.Local))
	case 'C':
		sel, ok := pick()
		if !ok {
			return
		}
		if !strings.EqualFold(a.readLine("Are you sure you want to cancel this booking? [y/N]: "), "y") {
			return
		}
		if err := a.bookings.Cancel(ctx, sel.ID); err != nil {
			printError(err)
			return
		}
		fmt.Println("Booking cancelled successfully")
	case 'S':
		sel, ok := pick()
		if !ok {
			return
		}
		status := domain.BookingStatus(strings.ToUpper(a.readLine("New status: ")))
		b, err := a.bookings.UpdateStatus(ctx, sel.ID, status)
		if err != nil {
			printError(err)
			return
		}
		fmt.Printf("Booking #%s is now %s\n", b.ID, b.Status)
	case 'F':
		status := domain.BookingStatus(strings.ToUpper(a.readLine("Status (PENDING, CONFIRMED, IN_PROGRESS, COMPLETED, CANCELLED): ")))
		filtered, err := a.bookings.ListByStatus(ctx, status)
		if err != nil {
			printError(err)
			return
		}
		for _, b := range filtered {
			fmt.Printf("- %s  %s  (#%s)\n", service.ServiceTitle(b.ServiceType), b.Status, b.ID)
		}
	}
}

func (a *app) profileScreen(ctx context.Context) {
	s := a.manager.Snapshot()
	p := s.Profile
	if _, err := a.manager.RefreshProfile(ctx); err != nil {
		printError(err)
		if !a.manager.Snapshot().IsAuthenticated() {
			return
		}
		if cached := a.creds.User(ctx); cached != nil {
			fmt.Println("Showing saved profile.")
			p = cached
		}
	} else {
		s = a.manager.Snapshot()
		p = s.Profile
	}
	if p == nil {
		return
	}
	fmt.Printf("\nName: %s\nPhone: %s\nAddress: %s %s, %s %s %s\n",
		p.Name, service.FormatPhoneNumber(s.PhoneNumber, a.cfg.CountryCode),
		p.Address.Line1, p.Address.Line2, p.Address.City, p.Address.State, p.Address.PostalCode)

	if !strings.EqualFold(a.readLine("Edit profile? [y/N]: "), "y") {
		return
	}
	in := domain.ProfileInput{
		Name:        a.readDefault("Full Name", p.Name),
		PhoneNumber: s.PhoneNumber,
		Address:     p.Address,
	}
	in.Address.Line1 = a.readDefault("Address Line 1", p.Address.Line1)
	in.Address.Line2 = a.readDefault("Address Line 2", p.Address.Line2)
	in.Address.City = a.readDefault("City", p.Address.City)
	if _, err := a.client.UpdateProfile(ctx, in); err != nil {
		printError(err)
		return
	}
	if _, err := a.manager.RefreshProfile(ctx); err != nil {
		printError(err)
		return
	}
	fmt.Println("Profile updated.")
}

// watchLocation envia la posicion al servidor cada vez que el usuario se
// mueve lo suficiente, hasta que pulse Enter.
func (a *app) watchLocation(ctx context.Context) {
	sub, err := a.locator.WatchLocation(ctx, func(fix location.Fix) {
		if _, err := a.client.UpdateLocation(ctx, fix.Latitude, fix.Longitude); err != nil {
			a.logger.Sugar().Warnw("update location failed", "error", err)
			return
		}
		fmt.Printf("Location shared: %.5f, %.5f\n", fix.Latitude, fix.Longitude)
	})
	if err != nil {
		fmt.Printf("Location Error: %v\n", err)
		return
	}
	a.readLine("Sharing location. Press Enter to stop.\n")
	sub.Cancel()
	<-sub.Done()
	if _, err := a.manager.RefreshProfile(ctx); err != nil {
		printError(err)
	}
}

func parseLatLon(s string) (float64, float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// bookingDetails arma la ficha de una reserva con la fecha en loc.
func bookingDetails(b domain.Booking, loc *time.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (#%s)\nStatus: %s\nPrice: Rs.%.0f\n", service.ServiceTitle(b.ServiceType), b.ID, b.Status, b.Price)
	fmt.Fprintf(&sb, "Address: %s\n", strings.Join(nonEmpty(b.AddressLine1, b.AddressLine2, b.City), ", "))
	if b.ScheduledDateTime != nil {
		fmt.Fprintf(&sb, "Scheduled: %s\n", b.ScheduledDateTime.In(loc).Format("2006-01-02 15:04"))
	}
	if b.VehicleType != "" || b.VehicleNumber != "" {
		fmt.Fprintf(&sb, "Vehicle: %s\n", strings.Join(nonEmpty(b.VehicleType, b.VehicleNumber), " "))
	}
	return sb.String()
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
