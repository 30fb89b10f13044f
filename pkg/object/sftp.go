// pkg/object/sftp.go

package object

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path"
	"time"

	"ParIO/pkg/version"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type sftpFile struct {
	*sftp.File
}

func (f *sftpFile) Size() (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

type sftpStore struct {
	host   string
	root   string
	client *sftp.Client
	conn   *ssh.Client
}

func (s *sftpStore) String() string {
	return fmt.Sprintf("sftp://%s%s/", s.host, s.root)
}

func (s *sftpStore) path(p string) string {
	if path.IsAbs(p) {
		return p
	}
	return path.Join(s.root, p)
}

func (s *sftpStore) Open(p string) (File, error) {
	f, err := s.client.Open(s.path(p))
	if err != nil {
		return nil, err
	}
	return &sftpFile{f}, nil
}

func (s *sftpStore) Create(p string) (File, error) {
	p = s.path(p)
	f, err := s.client.OpenFile(p, os.O_WRONLY|os.O_CREATE)
	if err != nil && os.IsNotExist(err) {
		if err = s.client.MkdirAll(path.Dir(p)); err == nil {
			f, err = s.client.OpenFile(p, os.O_WRONLY|os.O_CREATE)
		}
	}
	if err != nil {
		return nil, err
	}
	return &sftpFile{f}, nil
}

// Close shuts down the SFTP session and the SSH connection under it.
func (s *sftpStore) Close() error {
	err := s.client.Close()
	if s.conn != nil {
		if err2 := s.conn.Close(); err == nil {
			err = err2
		}
	}
	return err
}

func sshAuth(u *url.URL) ([]ssh.AuthMethod, error) {
	var auth []ssh.AuthMethod
	if keyPath := os.Getenv("SSH_PRIVATE_KEY_PATH"); keyPath != "" {
		pem, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, errors.Wrapf(err, "read private key %s", keyPath)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, errors.Wrapf(err, "parse private key %s", keyPath)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	password, ok := u.User.Password()
	if !ok {
		password = os.Getenv("SFTP_PASSWORD")
	}
	if password != "" {
		auth = append(auth, ssh.Password(password))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("no password or private key for %s", u.Host)
	}
	return auth, nil
}

// NewSFTP connects to addr, given as `user[:password]@host[:port][/root]`.
func NewSFTP(addr string) (Storage, error) {
	u, err := url.Parse("sftp://" + addr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", addr)
	}
	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "22")
	}
	auth, err := sshAuth(u)
	if err != nil {
		return nil, err
	}
	config := &ssh.ClientConfig{
		User:            u.User.Username(),
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		ClientVersion:   "SSH-2.0-" + version.UserAgent(),
		Timeout:         time.Second * 10,
	}
	conn, err := ssh.Dial("tcp", host, config)
	if err != nil {
		return nil, errors.Wrapf(err, "ssh %s", host)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "sftp %s", host)
	}
	logger.Debugf("connected to sftp server %s as %s", host, config.User)
	return &sftpStore{host: host, root: path.Clean("/" + u.Path), client: client, conn: conn}, nil
}

// NewSFTPClient wraps an established SFTP session. Relative paths are
// resolved against root.
func NewSFTPClient(client *sftp.Client, root string) Storage {
	return &sftpStore{host: "pipe", root: path.Clean("/" + root), client: client}
}

func init() {
	Register("sftp", NewSFTP)
}
