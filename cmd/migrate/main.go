package main

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
)

var hashSuffixPattern = regexp.MustCompile(`-([0-9a-f]{8})\.md$`)

// archivedMatter is the subset of archive frontmatter this tool reads
type archivedMatter struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <add-hashes|remove-duplicates> <archive-directory>")
	}

	command := os.Args[1]
	archiveDir := os.Args[2]

	switch command {
	case "add-hashes":
		if err := addHashes(archiveDir); err != nil {
			log.Fatal(err)
		}
	case "remove-duplicates":
		if err := removeDuplicates(archiveDir, bufio.NewReader(os.Stdin)); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("Unknown command %q", command)
	}
}

func addHashes(archiveDir string) error {
	return filepath.WalkDir(archiveDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on errors
		}

		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			if err := processFile(path); err != nil {
				log.Printf("Error processing %s: %v", path, err)
			}
		}

		return nil
	})
}

func processFile(filePath string) error {
	fileName := filepath.Base(filePath)
	if hasHash(fileName) {
		log.Printf("File %s already has hash, skipping", fileName)
		return nil
	}

	postURL, err := readPostURL(filePath)
	if err != nil {
		return err
	}
	if postURL == "" {
		log.Printf("No url found in %s, skipping", filePath)
		return nil
	}

	nameWithoutExt := strings.TrimSuffix(fileName, ".md")
	newFileName := fmt.Sprintf("%s-%s.md", nameWithoutExt, generateURLHash(postURL))
	newFilePath := filepath.Join(filepath.Dir(filePath), newFileName)

	log.Printf("Renaming %s -> %s", fileName, newFileName)
	return os.Rename(filePath, newFilePath)
}

// readPostURL returns the url recorded in the file's frontmatter
func readPostURL(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	var matter archivedMatter
	if _, err := frontmatter.Parse(f, &matter); err != nil {
		return "", fmt.Errorf("parsing frontmatter of %s: %w", filePath, err)
	}
	return strings.TrimSpace(matter.URL), nil
}

func generateURLHash(url string) string {
	h := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", h)[:8]
}

func hasHash(fileName string) bool {
	return hashSuffixPattern.MatchString(fileName)
}

func extractHash(fileName string) string {
	matches := hashSuffixPattern.FindStringSubmatch(fileName)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

func removeDuplicates(archiveDir string, reader *bufio.Reader) error {
	hashToFiles := make(map[string][]string)

	if err := filepath.WalkDir(archiveDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on errors
		}

		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			if hash := extractHash(filepath.Base(path)); hash != "" {
				hashToFiles[hash] = append(hashToFiles[hash], path)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walking directory: %w", err)
	}

	totalRemoved := 0
	for hash, files := range hashToFiles {
		if len(files) <= 1 {
			continue
		}

		fmt.Printf("\nFound %d duplicates with hash %s:\n", len(files), hash)
		for i, file := range files {
			fileName := filepath.Base(file)
			if i == 0 {
				fmt.Printf("  KEEP: %s\n", fileName)
				continue
			}

			if confirmDelete(reader, file) {
				if err := os.Remove(file); err != nil {
					log.Printf("Error removing %s: %v", file, err)
				} else {
					totalRemoved++
					fmt.Printf("  REMOVED: %s\n", fileName)
				}
			} else {
				fmt.Printf("  SKIP: %s\n", fileName)
			}
		}
	}

	fmt.Printf("\nRemoved %d duplicate files\n", totalRemoved)
	return nil
}

func confirmDelete(reader *bufio.Reader, path string) bool {
	for {
		fmt.Printf("  DELETE %s? [y/N]: ", filepath.Base(path))
		input, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("Error reading input: %v", err)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "y", "yes":
			return true
		case "", "n", "no":
			return false
		default:
			fmt.Println("  Please enter y or n.")
		}
	}
}
