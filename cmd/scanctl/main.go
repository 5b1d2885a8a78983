// Command scanctl is the lecturer-side scanning tool. It signs in against
// the API, pins the class being taught, and then feeds scanned QR payloads
// through the recording workflow, either as raw text on stdin or decoded
// from image files.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"qrattend/internal/localstore"
	"qrattend/internal/qrdecode"
	"qrattend/internal/remote"
	"qrattend/internal/session"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "login":
		err = cmdLogin(os.Args[2:])
	case "class":
		err = cmdClass(os.Args[2:])
	case "scan":
		err = cmdScan(os.Args[2:])
	case "status":
		err = cmdStatus(os.Args[2:])
	case "logout":
		err = cmdLogout(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("scanctl: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: scanctl <command> [flags]

commands:
  login   sign in and keep the bearer token
  class   show, set, or clear the class being taught
  scan    record attendance from stdin lines or -image files
  status  show the session roster for today
  logout  drop the stored token and identity`)
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".qrattend", "state.json")
}

func openStore(path string) (localstore.Store, error) {
	return localstore.NewFile(path)
}

func cmdLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	apiURL := fs.String("api", "http://localhost:5000", "API base URL")
	user := fs.String("user", "", "username, email, or ID")
	pass := fs.String("pass", "", "password")
	statePath := fs.String("state", defaultStatePath(), "state file")
	_ = fs.Parse(args)
	if *user == "" || *pass == "" {
		return errors.New("login requires -user and -pass")
	}

	store, err := openStore(*statePath)
	if err != nil {
		return err
	}

	body, _ := json.Marshal(map[string]string{"identifier": *user, "password": *pass})
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *apiURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Token   string         `json:"token"`
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Message == "" {
			parsed.Message = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("login rejected: %s", parsed.Message)
	}

	if err := store.Set(localstore.KeyUserToken, parsed.Token); err != nil {
		return err
	}
	if err := store.Set("apiUrl", *apiURL); err != nil {
		return err
	}
	if role, _ := parsed.User["role"].(string); role == "lecturer" {
		lec := session.LecturerContext{}
		if v, ok := parsed.User["lecturerId"].(string); ok {
			lec.LecturerID = v
		}
		if v, ok := parsed.User["name"].(string); ok {
			lec.Name = v
		}
		if v, ok := parsed.User["email"].(string); ok {
			lec.Email = v
		}
		if err := localstore.SetJSON(store, localstore.KeyLecturerData, lec); err != nil {
			return err
		}
	}
	if err := localstore.SetJSON(store, localstore.KeyUserData, parsed.User); err != nil {
		return err
	}

	log.Printf("signed in as %v", parsed.User["username"])
	return nil
}

func cmdClass(args []string) error {
	fs := flag.NewFlagSet("class", flag.ExitOnError)
	statePath := fs.String("state", defaultStatePath(), "state file")
	id := fs.String("id", "", "class ID")
	course := fs.String("course", "", "course code")
	name := fs.String("name", "", "course name")
	section := fs.String("section", "", "section")
	room := fs.String("room", "", "room")
	schedule := fs.String("schedule", "", "schedule")
	clear := fs.Bool("clear", false, "forget the selected class")
	_ = fs.Parse(args)

	store, err := openStore(*statePath)
	if err != nil {
		return err
	}

	if *clear {
		if err := store.Delete(localstore.KeyCurrentClass); err != nil {
			return err
		}
		log.Println("class cleared")
		return nil
	}

	if *id != "" {
		if *course == "" {
			return errors.New("class -id requires -course")
		}
		cls := session.ClassContext{
			ClassID:    *id,
			CourseCode: *course,
			CourseName: *name,
			Section:    *section,
			Room:       *room,
			Schedule:   *schedule,
		}
		if err := localstore.SetJSON(store, localstore.KeyCurrentClass, cls); err != nil {
			return err
		}
		log.Printf("teaching %s (%s)", cls.CourseCode, cls.ClassID)
		return nil
	}

	var cls session.ClassContext
	ok, err := localstore.GetJSON(store, localstore.KeyCurrentClass, &cls)
	if err != nil {
		return err
	}
	if !ok {
		log.Println("no class selected")
		return nil
	}
	log.Printf("class %s: %s %s room=%s schedule=%s", cls.ClassID, cls.CourseCode, cls.CourseName, cls.Room, cls.Schedule)
	return nil
}

func cmdScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	statePath := fs.String("state", defaultStatePath(), "state file")
	image := fs.String("image", "", "decode QR payloads from this image instead of stdin")
	decoder := fs.String("decoder", qrdecode.DefaultEndpoint, "QR decoding endpoint")
	bell := fs.Bool("bell", true, "ring the terminal bell on rejected scans")
	_ = fs.Parse(args)

	store, err := openStore(*statePath)
	if err != nil {
		return err
	}
	sess, err := openSession(store)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if *image != "" {
		payload, err := qrdecode.New(*decoder).DecodeFile(ctx, *image)
		if err != nil {
			if errors.Is(err, qrdecode.ErrNoQRCode) {
				log.Printf("%s: no QR code found", *image)
				return nil
			}
			return err
		}
		report(sess.Process(ctx, payload), *bell)
		return nil
	}

	log.Printf("scanning for %s, %d present; one payload per line, Ctrl-D to stop", className(sess), sess.Present())
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		report(sess.Process(ctx, line), *bell)
	}
	return scanner.Err()
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	statePath := fs.String("state", defaultStatePath(), "state file")
	_ = fs.Parse(args)

	store, err := openStore(*statePath)
	if err != nil {
		return err
	}
	sess, err := openSession(store)
	if err != nil {
		return err
	}

	lec := sess.Lecturer()
	suffix := ""
	if lec.Defaulted {
		suffix = " (no stored identity)"
	}
	log.Printf("lecturer %s %s%s", lec.Lecturer.LecturerID, lec.Lecturer.Name, suffix)
	log.Printf("class: %s", className(sess))
	log.Printf("present today: %d", sess.Present())
	for _, rec := range sess.Roster().Records() {
		mark := ""
		if rec.LocalOnly {
			mark = " [local only]"
		}
		log.Printf("  %s  %-10s %s%s",
			time.UnixMilli(rec.Timestamp).Local().Format("15:04:05"),
			rec.StudentID, rec.StudentName, mark)
	}
	return nil
}

func cmdLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	statePath := fs.String("state", defaultStatePath(), "state file")
	_ = fs.Parse(args)

	store, err := openStore(*statePath)
	if err != nil {
		return err
	}
	for _, key := range []string{localstore.KeyUserToken, localstore.KeyLecturerData, localstore.KeyUserData} {
		if err := store.Delete(key); err != nil {
			return err
		}
	}
	log.Println("signed out")
	return nil
}

// openSession assembles a session from stored state: the selected class (may
// be absent), the resolved lecturer, and a remote client using the stored
// token and API URL.
func openSession(store localstore.Store) (*session.Session, error) {
	var class *session.ClassContext
	var cls session.ClassContext
	ok, err := localstore.GetJSON(store, localstore.KeyCurrentClass, &cls)
	if err != nil {
		return nil, err
	}
	if ok {
		class = &cls
	}

	token, _, err := store.Get(localstore.KeyUserToken)
	if err != nil {
		return nil, err
	}
	apiURL, ok, err := store.Get("apiUrl")
	if err != nil {
		return nil, err
	}
	if !ok {
		apiURL = "http://localhost:5000"
	}

	return session.New(class, session.ResolveLecturer(store), store, remote.New(apiURL, token))
}

func className(sess *session.Session) string {
	if sess.Class() == nil {
		return "none"
	}
	return fmt.Sprintf("%s %s", sess.Class().CourseCode, sess.Class().CourseName)
}

// report prints one scan outcome. The bell stands in for the phone's buzz on
// scans that did not mark anyone present.
func report(res session.Result, bell bool) {
	switch res.Kind {
	case session.OutcomeRecorded:
		log.Printf("recorded %s %s (%d present)", res.Record.StudentID, res.Record.StudentName, res.Present)
	case session.OutcomeRecordedLocalOnly:
		log.Printf("recorded %s %s locally only, server unreachable (%d present)",
			res.Record.StudentID, res.Record.StudentName, res.Present)
	case session.OutcomeDuplicate:
		ring(bell)
		log.Printf("already recorded: %s %s at %s", res.Prior.StudentID, res.Prior.StudentName, res.PriorScanTime)
	case session.OutcomeFormatError:
		ring(bell)
		log.Printf("invalid code: %v", res.Err)
	case session.OutcomeNotStudentData:
		log.Printf("not a student code (keys: %d), ignored", len(res.Other))
	case session.OutcomeNoClass:
		ring(bell)
		log.Println("no class selected; run scanctl class first")
	default:
		log.Printf("scan dropped: %v", res.Err)
	}
}

func ring(bell bool) {
	if bell {
		fmt.Fprint(os.Stderr, "\a")
	}
}
