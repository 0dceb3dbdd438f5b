package db

type User struct {
	Studentid string
	Password  string
	Name      string
	Major     string
	Bio       string
	Team      string
	Track     string
	Role      string
	Createdat int64
}

type Token struct {
	Token     string
	Studentid string
	Createdat int64
}

type Verification struct {
	Code      string
	Studentid string
	Name      string
	Major     string
	Expiresat int64
}

type Application struct {
	Studentid   string
	Track       string
	Content     string
	Status      string
	Submittedat int64
}

type AttendanceSession struct {
	ID          int64
	Code        string
	Description string
	Active      int64
	Createdat   int64
}

type AttendanceRecord struct {
	Sessionid int64
	Studentid string
	Joinedat  int64
}
